package qr

import (
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// ExternalURL builds the stored QR reference: a link to an external
// code-image endpoint parameterized by the access code text. No image
// is generated locally on this path.
func ExternalURL(apiBase, codeText string) string {
	return apiBase + url.QueryEscape(codeText)
}

// EncodePNG renders the access code as a PNG locally, for clients that
// cannot reach the external endpoint.
func EncodePNG(codeText string, size int) ([]byte, error) {
	png, err := qrcode.Encode(codeText, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}
	return png, nil
}
