// Package export renders inspection records as CSV for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"inspeksi-backend/shared/database/models/inspection"
)

var csvHeader = []string{
	"id",
	"inspection_date",
	"inspection_time",
	"location",
	"location_code",
	"building",
	"inspector_email",
	"notes",
	"responses",
	"photo_count",
}

// InspectionsCSV renders records (with Location, Location.Building and User
// preloaded) into an RFC 4180 CSV document. The responses blob is emitted as
// its raw JSON string in a single quoted cell.
func InspectionsCSV(records []inspection.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, r := range records {
		row := []string{
			r.ID.String(),
			r.InspectionDate.Format("2006-01-02"),
			r.InspectionTime,
			r.Location.Name,
			r.Location.Code,
			r.Location.Building.Name,
			r.User.Email,
			r.Notes,
			string(r.Responses),
			strconv.Itoa(photoCount(r.PhotoURLs)),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// photoCount counts entries in the photo_urls JSON array without decoding
// into typed structs; a null or absent column counts as zero.
func photoCount(raw []byte) int {
	if len(raw) == 0 {
		return 0
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return 0
	}
	return len(urls)
}
