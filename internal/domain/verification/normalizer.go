package verification

import (
	"strconv"
	"strings"
	"time"

	"facegate-server-go/internal/platform/config"
	"facegate-server-go/internal/providers"
	"facegate-server-go/internal/utils"
)

// Default field-priority chains. Vendors disagree on response field names, so
// each name in a chain is tried in order and the first present value wins.
// Per-provider config can override any chain.
var (
	defaultScoreFields = []string{"match_score", "score", "confidence", "similarity"}
	defaultMatchFields = []string{"matched", "match", "is_match"}
	defaultBandFields  = []string{"match_band", "band", "result"}
)

// Normalizer maps one vendor's raw response into the canonical result. It is
// a pure function of the raw payload; normalizing the same input twice yields
// the same verdict.
type Normalizer struct {
	scoreFields []string
	matchFields []string
	bandFields  []string
	logger      *utils.Logger
}

func NewNormalizer(cfg config.ProviderConfig, logger *utils.Logger) *Normalizer {
	n := &Normalizer{
		scoreFields: cfg.ScoreFields,
		matchFields: cfg.MatchFields,
		bandFields:  cfg.BandFields,
		logger:      logger,
	}
	if len(n.scoreFields) == 0 {
		n.scoreFields = defaultScoreFields
	}
	if len(n.matchFields) == 0 {
		n.matchFields = defaultMatchFields
	}
	if len(n.bandFields) == 0 {
		n.bandFields = defaultBandFields
	}
	return n
}

// Normalize derives the canonical verdict from a raw provider result.
func (n *Normalizer) Normalize(raw *providers.RawResult, requestID string) *Result {
	payload := raw.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}

	score, hasScore := n.extractScore(payload)
	matched, hasMatched := n.extractMatched(payload)
	band, hasBand := n.extractBand(payload)

	if !hasBand {
		if hasScore {
			band = bandFromScore(score)
		} else {
			band = BandGray
		}
	}

	faceMatched := score >= scoreVerifyThreshold
	if hasMatched {
		faceMatched = matched
	}

	status := StatusFailed
	switch {
	case (!hasMatched || matched) && score >= scoreVerifyThreshold:
		status = StatusVerified
	case score >= scoreReviewThreshold && score < scoreVerifyThreshold:
		status = StatusReview
	}

	result := &Result{
		RequestID:       requestID,
		MatchScore:      score,
		MatchBand:       band,
		Status:          status,
		ConfidenceLevel: confidenceFromScore(score),
		FaceMatched:     faceMatched,
		Face1:           n.extractDetection(payload, "face1"),
		Face2:           n.extractDetection(payload, "face2"),
		Liveness:        n.extractLiveness(payload),
		ProcessedAt:     time.Now().UTC(),
		ProviderMode:    raw.Mode,
		RawResponse:     raw.Payload,
	}

	n.logger.InfoTag("Gateway", "normalized %s: score=%.1f band=%s status=%s",
		requestID, result.MatchScore, result.MatchBand, result.Status)

	return result
}

func (n *Normalizer) extractScore(payload map[string]interface{}) (float64, bool) {
	for _, field := range n.scoreFields {
		v, ok := payload[field]
		if !ok {
			continue
		}
		score, ok := toScore(v)
		if !ok {
			continue
		}
		return utils.ClampScore(score), true
	}
	return 0, false
}

func (n *Normalizer) extractMatched(payload map[string]interface{}) (bool, bool) {
	for _, field := range n.matchFields {
		v, ok := payload[field]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			switch strings.ToLower(t) {
			case "true", "yes", "1":
				return true, true
			case "false", "no", "0":
				return false, true
			}
		}
	}
	return false, false
}

func (n *Normalizer) extractBand(payload map[string]interface{}) (string, bool) {
	for _, field := range n.bandFields {
		label, ok := payload[field].(string)
		if !ok || label == "" {
			continue
		}
		switch strings.ToLower(label) {
		case "green", "high":
			return BandHigh, true
		case "amber", "yellow", "medium":
			return BandMedium, true
		case "red", "low":
			return BandLow, true
		default:
			// Unrecognized vendor labels land in the gray band rather than
			// being guessed at.
			return BandGray, true
		}
	}
	return "", false
}

func (n *Normalizer) extractDetection(payload map[string]interface{}, key string) DetectionInfo {
	info := DetectionInfo{Detected: true, Quality: "unknown"}
	obj, ok := payload[key].(map[string]interface{})
	if !ok {
		return info
	}
	if detected, ok := obj["detected"].(bool); ok {
		info.Detected = detected
	}
	if quality, ok := obj["quality"].(string); ok && quality != "" {
		info.Quality = quality
	}
	return info
}

func (n *Normalizer) extractLiveness(payload map[string]interface{}) LivenessInfo {
	info := LivenessInfo{Status: "not_checked"}
	for _, key := range []string{"liveness", "liveness_info", "livenessInfo"} {
		obj, ok := payload[key].(map[string]interface{})
		if !ok {
			continue
		}
		if status, ok := obj["status"].(string); ok && status != "" {
			info.Status = status
		}
		if confidence, ok := toScore(obj["confidence"]); ok {
			info.Confidence = utils.ClampScore(confidence)
		}
		return info
	}
	return info
}

// toScore coerces a vendor score value onto the 0-100 scale. Values at or
// below 1.0 are fractional similarities and scale up.
func toScore(v interface{}) (float64, bool) {
	var score float64
	switch t := v.(type) {
	case float64:
		score = t
	case int:
		score = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		score = parsed
	default:
		return 0, false
	}
	if score <= 1.0 {
		score *= 100
	}
	return score, true
}

func bandFromScore(s float64) string {
	switch {
	case s >= scoreHighThreshold:
		return BandHigh
	case s >= scoreVerifyThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

func confidenceFromScore(s float64) string {
	switch {
	case s >= scoreHighThreshold:
		return BandHigh
	case s >= scoreVerifyThreshold:
		return BandMedium
	default:
		return BandLow
	}
}
