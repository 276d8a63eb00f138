package verification

import "time"

// Match bands and confidence levels on the canonical 0-100 scale.
const (
	BandHigh   = "HIGH"
	BandMedium = "MEDIUM"
	BandLow    = "LOW"
	BandGray   = "GRAY"
)

// Verdict statuses returned to the caller.
const (
	StatusVerified = "VERIFIED"
	StatusReview   = "REVIEW"
	StatusFailed   = "FAILED"
)

// Score cut points. These are fixed policy carried through from observed
// vendor behavior, not tunable defaults.
const (
	scoreHighThreshold   = 85.0
	scoreVerifyThreshold = 70.0
	scoreReviewThreshold = 50.0
)

// Request is one caller submission: two raw image buffers and an optional
// document-type hint.
type Request struct {
	IDImage     []byte
	SelfieImage []byte
	DocType     string
}

// DetectionInfo describes whether a face was found in one image. Most
// vendors omit these fields on success, so absent values default to detected
// with unknown quality.
type DetectionInfo struct {
	Detected bool   `json:"detected"`
	Quality  string `json:"quality"`
}

// LivenessInfo relays a vendor's liveness assessment when one exists.
type LivenessInfo struct {
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
}

// Result is the canonical verdict, independent of which vendor produced it.
type Result struct {
	RequestID       string                 `json:"requestId"`
	MatchScore      float64                `json:"matchScore"`
	MatchBand       string                 `json:"matchBand"`
	Status          string                 `json:"status"`
	ConfidenceLevel string                 `json:"confidenceLevel"`
	FaceMatched     bool                   `json:"faceMatched"`
	Face1           DetectionInfo          `json:"face1"`
	Face2           DetectionInfo          `json:"face2"`
	Liveness        LivenessInfo           `json:"livenessInfo"`
	ProcessedAt     time.Time              `json:"processedAt"`
	ProviderMode    string                 `json:"providerMode"`
	RawResponse     map[string]interface{} `json:"rawResponse,omitempty"`
}
