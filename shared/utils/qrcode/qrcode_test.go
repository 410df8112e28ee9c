package qrcode

import (
	"testing"

	"github.com/google/uuid"
)

func TestLocationPayload(t *testing.T) {
	id := uuid.MustParse("7e0b6f7a-93c1-4a56-9a6c-2f4f0a3d9b10")

	tests := []struct {
		name     string
		frontend string
		code     string
		want     string
	}{
		{
			name:     "with code",
			frontend: "https://app.inspeksi.app",
			code:     "TLT-3F-01",
			want:     "https://app.inspeksi.app/inspect/7e0b6f7a-93c1-4a56-9a6c-2f4f0a3d9b10?code=TLT-3F-01",
		},
		{
			name:     "without code",
			frontend: "https://app.inspeksi.app",
			code:     "",
			want:     "https://app.inspeksi.app/inspect/7e0b6f7a-93c1-4a56-9a6c-2f4f0a3d9b10",
		},
		{
			name:     "trailing slash trimmed",
			frontend: "https://app.inspeksi.app/",
			code:     "",
			want:     "https://app.inspeksi.app/inspect/7e0b6f7a-93c1-4a56-9a6c-2f4f0a3d9b10",
		},
		{
			name:     "code is query escaped",
			frontend: "http://localhost:3000",
			code:     "lantai 2/kiri",
			want:     "http://localhost:3000/inspect/7e0b6f7a-93c1-4a56-9a6c-2f4f0a3d9b10?code=lantai+2%2Fkiri",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocationPayload(tt.frontend, id, tt.code)
			if got != tt.want {
				t.Errorf("LocationPayload() = %q, want %q", got, tt.want)
			}
		})
	}
}
