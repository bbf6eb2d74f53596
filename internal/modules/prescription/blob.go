// README: Blob store for prescription documents, backed by S3.
package prescription

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pharmago/internal/types"
)

// BlobStore stores a public object and returns the URL it can be fetched from.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type S3Blob struct {
	uploader      uploader
	bucket        string
	publicBaseURL string
}

// NewS3Blob stores objects in bucket. When publicBaseURL is empty the URL S3
// reports for the upload is returned.
func NewS3Blob(u *manager.Uploader, bucket, publicBaseURL string) *S3Blob {
	return &S3Blob{uploader: u, bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (b *S3Blob) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	out, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", types.Remote("upload "+key, err)
	}
	if b.publicBaseURL != "" {
		return b.publicBaseURL + "/" + url.PathEscape(key), nil
	}
	return out.Location, nil
}
