package httptransport

import (
	goerrors "errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	platerrors "facegate-server-go/internal/platform/errors"
)

// APIResponse is the envelope on every /api endpoint except /api/health,
// which callers poll with dumb clients and expect flat.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
}

// RespondSuccess returns a success envelope.
func RespondSuccess(c *gin.Context, httpStatus int, data interface{}) {
	c.JSON(httpStatus, APIResponse{
		Success: true,
		Data:    data,
	})
}

// RespondError returns a failure envelope. detail carries the upstream body
// when one exists and is omitted otherwise.
func RespondError(c *gin.Context, httpStatus int, message string, detail interface{}) {
	c.JSON(httpStatus, APIResponse{
		Success: false,
		Error:   message,
		Detail:  detail,
	})
}

// RespondFromError maps a gateway error onto the wire: the platform error's
// status decides the HTTP code and any upstream body lands under detail,
// decoded when it is JSON so clients do not get double-encoded strings.
func RespondFromError(c *gin.Context, err error) {
	status := platerrors.StatusOf(err)
	message := err.Error()

	var platErr *platerrors.Error
	if goerrors.As(err, &platErr) {
		message = platErr.Message
	}

	var detail interface{}
	if raw := platerrors.DetailOf(err); raw != "" {
		var decoded interface{}
		if sonic.Unmarshal([]byte(raw), &decoded) == nil {
			detail = decoded
		} else {
			detail = raw
		}
	}

	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondError(c, status, message, detail)
}
