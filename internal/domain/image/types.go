package image

// ValidationResult captures the outcome of security validation.
type ValidationResult struct {
	IsValid      bool
	Format       string
	Width        int
	Height       int
	FileSize     int64
	Error        error
	SecurityRisk string
}

// Compressed is the artefact handed to provider adapters: JPEG bytes that fit
// the configured payload budget, best effort.
type Compressed struct {
	Bytes        []byte
	OriginalSize int
	EncodedSize  int
	QualityUsed  int
	BoundingBox  int
	Format       string
}
