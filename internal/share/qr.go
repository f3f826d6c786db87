// Package share builds public share links for study resources and renders
// them as QR codes so a set can be passed around in person.
package share

import (
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// sharePaths maps shareable resource kinds to their public page path.
var sharePaths = map[string]string{
	"note":          "/notes",
	"flashcard-set": "/flashcards/sets",
	"quiz":          "/quizzes",
}

// ShareURL builds the public URL for a shareable resource.
func ShareURL(siteURL, kind, id string) (string, error) {
	path, ok := sharePaths[kind]
	if !ok {
		return "", fmt.Errorf("unknown share kind %q", kind)
	}
	if id == "" {
		return "", fmt.Errorf("share id is required")
	}
	return fmt.Sprintf("%s%s/%s", siteURL, path, url.PathEscape(id)), nil
}

// QRCodePNG renders a URL as a 256px PNG and returns it base64-encoded for
// direct embedding in an <img> tag.
func QRCodePNG(shareURL string) (string, error) {
	png, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %v", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
