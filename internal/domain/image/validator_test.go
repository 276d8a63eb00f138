package image

import (
	"strings"
	"testing"

	"facegate-server-go/internal/platform/config"
)

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		MaxFileSize:    10 * 1024 * 1024,
		MaxPixels:      16777216,
		MaxWidth:       8192,
		MaxHeight:      8192,
		AllowedFormats: []string{"jpeg", "jpg", "png", "webp", "gif"},
		EnableDeepScan: true,
	}
}

func TestValidateBytesAcceptsRealImages(t *testing.T) {
	v := NewSecurityValidator(testSecurityConfig(), nil)

	cases := []struct {
		name   string
		raw    []byte
		format string
	}{
		{"jpeg with declared format", encodeJPEG(t, flatImage(40, 40), 80), "jpeg"},
		{"jpeg without declared format", encodeJPEG(t, flatImage(40, 40), 80), ""},
		{"png", encodePNG(t, flatImage(40, 40)), "png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := v.ValidateBytes(tc.raw, tc.format)
			if !got.IsValid {
				t.Fatalf("ValidateBytes rejected valid image: %v", got.Error)
			}
			if got.Width != 40 || got.Height != 40 {
				t.Errorf("dimensions %dx%d, want 40x40", got.Width, got.Height)
			}
			if got.FileSize != int64(len(tc.raw)) {
				t.Errorf("FileSize %d, want %d", got.FileSize, len(tc.raw))
			}
		})
	}
}

func TestValidateBytesRejections(t *testing.T) {
	v := NewSecurityValidator(testSecurityConfig(), nil)

	bigJPEG := encodeJPEG(t, flatImage(40, 40), 80)

	cases := []struct {
		name    string
		raw     []byte
		format  string
		wantMsg string
	}{
		{"empty payload", nil, "jpeg", "empty image payload"},
		{"unapproved format", bigJPEG, "bmp", "unsupported format"},
		{"garbage bytes", []byte("definitely not pixels"), "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := v.ValidateBytes(tc.raw, tc.format)
			if got.IsValid {
				t.Fatal("ValidateBytes accepted invalid input")
			}
			if got.Error == nil {
				t.Fatal("expected an error on the result")
			}
			if tc.wantMsg != "" && !strings.Contains(got.Error.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", got.Error, tc.wantMsg)
			}
		})
	}
}

func TestValidateBytesSizeLimit(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.MaxFileSize = 64
	v := NewSecurityValidator(cfg, nil)

	got := v.ValidateBytes(encodeJPEG(t, flatImage(40, 40), 80), "jpeg")
	if got.IsValid {
		t.Fatal("accepted image over the size limit")
	}
	if got.SecurityRisk != "file too large" {
		t.Errorf("SecurityRisk = %q, want %q", got.SecurityRisk, "file too large")
	}
}

func TestValidateBytesDimensionLimit(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.MaxWidth = 32
	cfg.MaxHeight = 32
	v := NewSecurityValidator(cfg, nil)

	if got := v.ValidateBytes(encodeJPEG(t, flatImage(40, 40), 80), "jpeg"); got.IsValid {
		t.Fatal("accepted image over the dimension limit")
	}
}

func TestScanForMaliciousContent(t *testing.T) {
	v := NewSecurityValidator(testSecurityConfig(), nil)

	cases := []struct {
		name string
		raw  []byte
		want bool
	}{
		{"pe executable header", []byte{0x4D, 0x5A, 0x90, 0x00}, true},
		{"pdf header", []byte("%PDF-1.7 payload"), true},
		{"svg with script", []byte(`<svg><script>alert(1)</script></svg>`), true},
		{"plain jpeg header", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := v.scanForMaliciousContent(tc.raw); got != tc.want {
				t.Errorf("scanForMaliciousContent = %v, want %v", got, tc.want)
			}
		})
	}
}
