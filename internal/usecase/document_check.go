package usecase

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/domain"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/heic"
)

// CheckDocument verifies that the upload is a readable receipt document and
// returns the sniffed MIME type to forward to the analysis service. The type
// is detected from the bytes, not from the client's Content-Type header.
func CheckDocument(upload *domain.Upload, maxBytes int64) (string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", fmt.Errorf("empty file")
	}
	if maxBytes > 0 && int64(len(upload.Data)) > maxBytes {
		return "", fmt.Errorf("file too large: %d bytes (limit %d)", len(upload.Data), maxBytes)
	}

	mt := mimetype.Detect(upload.Data)

	switch {
	case mt.Is("application/pdf"):
		// Azure accepts PDFs natively, no further verification beyond the signature
		return mt.String(), nil

	case mt.Is("image/heic") || mt.Is("image/heif"):
		// iPhone captures; Go's image package cannot decode these
		if _, err := heic.Decode(bytes.NewReader(upload.Data)); err != nil {
			return "", fmt.Errorf("unreadable HEIC image: %v", err)
		}
		return mt.String(), nil

	case mt.Is("image/jpeg") || mt.Is("image/png") || mt.Is("image/gif"):
		// Fully decode to catch truncated or corrupt files before paying for
		// a cloud call
		if _, _, err := image.Decode(bytes.NewReader(upload.Data)); err != nil {
			return "", fmt.Errorf("unreadable image: %v", err)
		}
		return mt.String(), nil
	}

	return "", fmt.Errorf("unsupported file type %s", mt.String())
}
