package profile

import (
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"pharmago/internal/types"
)

const qrSize = 256

// EncodeQR renders the patient id as a PNG QR code. The payload is the bare id
// so any scanner app can read it.
func EncodeQR(patientID types.ID) ([]byte, error) {
	return qrcode.Encode(string(patientID), qrcode.Medium, qrSize)
}

// DecodePayload turns a scanned QR payload back into a patient id. Firebase
// uids and uuids are both accepted; anything with whitespace or path
// separators inside is rejected.
func DecodePayload(payload string) (types.ID, error) {
	p := strings.TrimSpace(payload)
	if p == "" || len(p) > 128 || strings.ContainsAny(p, " \t\r\n/?#") {
		return "", ErrInvalidQR
	}
	if u, err := uuid.Parse(p); err == nil {
		return types.ID(u.String()), nil
	}
	return types.ID(p), nil
}
