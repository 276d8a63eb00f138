package eventbus

// Verification lifecycle topics, one per gateway state transition.
const (
	EventVerificationReceived   = "verification:received"
	EventVerificationValidated  = "verification:validated"
	EventVerificationCompressed = "verification:compressed"
	// EventCompressionDetail carries one CompressionEventData per image,
	// separate from the stage topic which carries VerificationEventData.
	EventCompressionDetail = "verification:compressed:detail"
	EventVerificationInvoked    = "verification:invoked"
	EventVerificationNormalized = "verification:normalized"
	EventVerificationErrored    = "verification:errored"
)

// VerificationEventData travels with every lifecycle topic.
type VerificationEventData struct {
	RequestID    string `json:"request_id"`
	ProviderMode string `json:"provider_mode"`
	Stage        string `json:"stage"`
	ElapsedMs    int64  `json:"elapsed_ms,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CompressionEventData reports what the compressor did to one image.
type CompressionEventData struct {
	RequestID    string `json:"request_id"`
	Label        string `json:"label"` // "id" or "selfie"
	OriginalSize int    `json:"original_size"`
	EncodedSize  int    `json:"encoded_size"`
	QualityUsed  int    `json:"quality_used"`
}
