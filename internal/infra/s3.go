// README: S3 uploader initialisation for generated prescription documents.
package infra

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Uploader loads the default AWS credential chain for region and returns
// a multipart-capable uploader.
func NewS3Uploader(ctx context.Context, region string) (*manager.Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return manager.NewUploader(client), nil
}
