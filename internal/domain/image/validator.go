package image

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"facegate-server-go/internal/platform/config"
	"facegate-server-go/internal/utils"
)

// SecurityValidator performs layered security checks against incoming image payloads.
type SecurityValidator struct {
	config *config.SecurityConfig
	logger *utils.Logger
}

// NewSecurityValidator constructs a new validator instance.
func NewSecurityValidator(
	config *config.SecurityConfig,
	logger *utils.Logger,
) *SecurityValidator {
	return &SecurityValidator{
		config: config,
		logger: logger,
	}
}

var imageSignatures = map[string][]byte{
	"jpeg": {0xFF, 0xD8},
	"jpg":  {0xFF, 0xD8},
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"gif":  {0x47, 0x49, 0x46, 0x38},
	"webp": {0x52, 0x49, 0x46, 0x46},
	"bmp":  {0x42, 0x4D},
}

// ValidateBytes validates raw image bytes, optionally against a declared format.
func (v *SecurityValidator) ValidateBytes(raw []byte, declaredFormat string) ValidationResult {
	result := ValidationResult{IsValid: false}

	if len(raw) == 0 {
		result.Error = fmt.Errorf("empty image payload")
		return result
	}

	if int64(len(raw)) > v.config.MaxFileSize {
		result.Error = fmt.Errorf(
			"file size exceeds limit: %d bytes (max %d bytes)",
			len(raw),
			v.config.MaxFileSize,
		)
		result.SecurityRisk = "file too large"
		v.logger.WarnTag("Image",
			"detected oversized image: size=%d max_size=%d format=%s",
			len(raw),
			v.config.MaxFileSize,
			declaredFormat,
		)
		return result
	}

	if declaredFormat != "" && !v.isFormatAllowed(declaredFormat) {
		result.Error = fmt.Errorf("unsupported format: %s", declaredFormat)
		result.SecurityRisk = "unapproved format"
		return result
	}

	decodeResult := v.validateImageDecoding(raw, declaredFormat)
	if !decodeResult.IsValid {
		if declaredFormat != "" && !v.validateFileSignature(raw, declaredFormat) {
			actualHeader := fmt.Sprintf("%x", raw[:min(len(raw), 16)])
			v.logger.WarnTag("Image",
				"file signature mismatch: declared_format=%s actual_header=%s",
				declaredFormat,
				actualHeader,
			)
		}
		return decodeResult
	}

	result = decodeResult
	result.IsValid = true
	result.FileSize = int64(len(raw))
	return result
}

func (v *SecurityValidator) isFormatAllowed(format string) bool {
	if v.config == nil || len(v.config.AllowedFormats) == 0 {
		return true
	}
	if format == "" {
		return true
	}

	format = strings.ToLower(format)
	for _, allowedFormat := range v.config.AllowedFormats {
		if strings.ToLower(allowedFormat) == format {
			return true
		}
	}
	return false
}

func (v *SecurityValidator) validateFileSignature(raw []byte, format string) bool {
	signature, ok := imageSignatures[strings.ToLower(format)]
	if !ok || len(signature) == 0 {
		return true
	}
	if len(raw) < len(signature) {
		return false
	}
	return bytes.Equal(signature, raw[:len(signature)])
}

func (v *SecurityValidator) scanForMaliciousContent(raw []byte) bool {
	suspiciousSignatures := [][]byte{
		{0x4D, 0x5A},             // PE executable
		{0x25, 0x50, 0x44, 0x46}, // PDF
	}

	for _, signature := range suspiciousSignatures {
		if bytes.HasPrefix(raw, signature) {
			v.logger.WarnTag("Image",
				"detected executable signature: signature_hex=%x",
				signature,
			)
			return true
		}
	}

	compressionSignatures := [][]byte{
		{0x50, 0x4B, 0x03, 0x04}, // zip
		{0x1F, 0x8B, 0x08},       // gzip
	}

	for _, signature := range compressionSignatures {
		if bytes.HasPrefix(raw, signature) {
			v.logger.WarnTag("Image",
				"detected compressed archive: signature_hex=%x",
				signature,
			)
			return true
		}
	}

	rawStr := string(raw)
	if strings.Contains(strings.ToLower(rawStr), "<svg") {
		return v.checkSVGScripts(rawStr)
	}

	return false
}

func (v *SecurityValidator) checkSVGScripts(rawStr string) bool {
	suspiciousStrings := []string{
		"<script",
		"javascript:",
		"vbscript:",
		"onload=",
		"onerror=",
		"eval(",
		"document.cookie",
		"window.location",
		"<iframe",
		"<object",
		"<embed",
	}

	rawStrLower := strings.ToLower(rawStr)
	for _, suspicious := range suspiciousStrings {
		if strings.Contains(rawStrLower, suspicious) {
			v.logger.WarnTag("Image", "detected suspicious SVG content: token=%s", suspicious)
			return true
		}
	}
	return false
}

func (v *SecurityValidator) validateImageDecoding(
	raw []byte,
	format string,
) ValidationResult {
	result := ValidationResult{Format: format}
	reader := bytes.NewReader(raw)

	cfg, actualFormat, err := image.DecodeConfig(reader)
	if err != nil {
		result.Error = fmt.Errorf("decode image config: %w", err)
		result.SecurityRisk = "corrupted image data"
		return result
	}

	if actualFormat != "" {
		result.Format = actualFormat
	}

	if cfg.Width > v.config.MaxWidth || cfg.Height > v.config.MaxHeight {
		result.Error = fmt.Errorf("dimensions exceed limit: %dx%d (max %dx%d)",
			cfg.Width, cfg.Height, v.config.MaxWidth, v.config.MaxHeight)
		result.SecurityRisk = "dimensions too large"
		return result
	}

	totalPixels := int64(cfg.Width) * int64(cfg.Height)
	if totalPixels > v.config.MaxPixels {
		result.Error = fmt.Errorf("pixel count exceeds limit: %d (max %d)", totalPixels, v.config.MaxPixels)
		result.SecurityRisk = "pixel count too high"
		return result
	}

	if v.config.EnableDeepScan && v.scanForMaliciousContent(raw) {
		result.Error = fmt.Errorf("potential malicious content detected")
		result.SecurityRisk = "suspicious content"
		return result
	}

	result.IsValid = true
	result.Width = cfg.Width
	result.Height = cfg.Height
	result.FileSize = int64(len(raw))

	v.logger.Debug(
		"image validation success: format=%s width=%d height=%d size=%d",
		result.Format,
		result.Width,
		result.Height,
		result.FileSize,
	)

	return result
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
