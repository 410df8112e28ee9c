// Package qrcode builds the scan payload strings encoded into location QR
// codes. Rendering the actual image happens on the frontend; the backend only
// owns the payload format.
package qrcode

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// LocationPayload builds the URL a printed location QR code resolves to.
// Scanning opens the inspection form for that location.
func LocationPayload(frontendURL string, locationID uuid.UUID, locationCode string) string {
	base := strings.TrimRight(frontendURL, "/")
	payload := fmt.Sprintf("%s/inspect/%s", base, locationID)
	if locationCode != "" {
		payload += "?code=" + url.QueryEscape(locationCode)
	}
	return payload
}
