package providers

import (
	"context"
	"encoding/base64"
	"fmt"

	"facegate-server-go/internal/domain/image"
)

// Vendor-side task statuses for polling protocols. Transitions are
// one-directional: pending or in_progress moves to completed or failed and
// never reverses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"
)

// Request carries the compressed images handed to an adapter. DocType is only
// populated when the caller supplied one.
type Request struct {
	IDImage     *image.Compressed
	SelfieImage *image.Compressed
	DocType     string
}

// RawResult is a vendor response before normalization. Payload holds the
// decoded JSON object when the body was JSON; Text holds the body verbatim.
type RawResult struct {
	Payload    map[string]interface{}
	Text       string
	HTTPStatus int
	Mode       string
}

// Provider is one vendor integration. Execute runs the vendor's full call
// protocol under the caller's deadline.
type Provider interface {
	Name() string
	RequiresDocType() bool
	Execute(ctx context.Context, req Request) (*RawResult, error)
}

// Base64 encodes an image payload for JSON transport.
func Base64(img *image.Compressed) string {
	if img == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(img.Bytes)
}

// DataURI wraps an image payload in a data URI for chat-style vision APIs.
func DataURI(img *image.Compressed) string {
	if img == nil {
		return ""
	}
	format := img.Format
	if format == "" {
		format = "jpeg"
	}
	return fmt.Sprintf("data:image/%s;base64,%s", format, Base64(img))
}
