// Package facematch is the HTTP front door for face verification requests.
// It accepts either multipart uploads or JSON bodies with base64 images and
// relays whatever the gateway decides.
package facematch

import (
	"context"
	"encoding/base64"
	goerrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"facegate-server-go/internal/domain/verification"
	platerrors "facegate-server-go/internal/platform/errors"
	httptransport "facegate-server-go/internal/transport/http"
	"facegate-server-go/internal/utils"
)

const missingImagesMessage = "Both idImage and selfieImage are required"

// maxInlineImageBytes bounds a single uploaded image before validation.
const maxInlineImageBytes = 20 << 20

// Service handles the face-match HTTP surface.
type Service struct {
	gateway *verification.Gateway
	logger  *utils.Logger
}

type jsonBody struct {
	IDImage     string `json:"idImage"`
	SelfieImage string `json:"selfieImage"`
	DocType     string `json:"docType"`
}

func NewService(gateway *verification.Gateway, logger *utils.Logger) (*Service, error) {
	if gateway == nil {
		return nil, platerrors.New(platerrors.KindConfig, "facematch.NewService", "gateway is required")
	}
	return &Service{gateway: gateway, logger: logger}, nil
}

// Register registers the face-match routes.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.POST("/face-match", s.handleFaceMatch)
	s.logger.InfoTag("HTTP", "face-match routes registered")
	return nil
}

// handleFaceMatch accepts one verification submission.
//
//	@Summary		Verify that an ID photo and a selfie show the same face
//	@Accept			json
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			idImage		formData	file	false	"identity document photo"
//	@Param			selfieImage	formData	file	false	"selfie photo"
//	@Param			docType		formData	string	false	"document type hint"
//	@Success		200	{object}	httptransport.APIResponse
//	@Failure		400	{object}	httptransport.APIResponse
//	@Router			/api/face-match [post]
func (s *Service) handleFaceMatch(c *gin.Context) {
	req, err := s.parseRequest(c)
	if err != nil {
		httptransport.RespondFromError(c, err)
		return
	}

	result, err := s.gateway.Verify(c.Request.Context(), *req)
	if err != nil {
		httptransport.RespondFromError(c, err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, result)
}

func (s *Service) parseRequest(c *gin.Context) (*verification.Request, error) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return s.parseMultipart(c)
	}
	return s.parseJSON(c)
}

func (s *Service) parseMultipart(c *gin.Context) (*verification.Request, error) {
	const op = "facematch.parseMultipart"

	idImage, err := readFormFile(c, "idImage")
	if err != nil {
		return nil, err
	}
	selfieImage, err := readFormFile(c, "selfieImage")
	if err != nil {
		return nil, err
	}
	if len(idImage) == 0 || len(selfieImage) == 0 {
		return nil, platerrors.New(platerrors.KindValidation, op, missingImagesMessage)
	}

	return &verification.Request{
		IDImage:     idImage,
		SelfieImage: selfieImage,
		DocType:     c.PostForm("docType"),
	}, nil
}

func (s *Service) parseJSON(c *gin.Context) (*verification.Request, error) {
	const op = "facematch.parseJSON"

	var body jsonBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, platerrors.Wrap(platerrors.KindValidation, op, "request body is not valid JSON", err)
	}
	if body.IDImage == "" || body.SelfieImage == "" {
		return nil, platerrors.New(platerrors.KindValidation, op, missingImagesMessage)
	}

	idImage, err := decodeInlineImage(body.IDImage)
	if err != nil {
		return nil, platerrors.Wrap(platerrors.KindValidation, op, "idImage is not valid base64", err)
	}
	selfieImage, err := decodeInlineImage(body.SelfieImage)
	if err != nil {
		return nil, platerrors.Wrap(platerrors.KindValidation, op, "selfieImage is not valid base64", err)
	}

	return &verification.Request{
		IDImage:     idImage,
		SelfieImage: selfieImage,
		DocType:     body.DocType,
	}, nil
}

// readFormFile pulls one multipart file. A missing field is reported through
// the shared missing-images message, not as a malformed request.
func readFormFile(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if goerrors.Is(err, http.ErrMissingFile) {
			return nil, platerrors.New(platerrors.KindValidation, "facematch.readFormFile", missingImagesMessage)
		}
		return nil, platerrors.Wrap(platerrors.KindValidation, "facematch.readFormFile",
			"could not read "+field, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, platerrors.Wrap(platerrors.KindValidation, "facematch.readFormFile",
			"could not open "+field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxInlineImageBytes))
	if err != nil {
		return nil, platerrors.Wrap(platerrors.KindValidation, "facematch.readFormFile",
			"could not read "+field, err)
	}
	return data, nil
}

// decodeInlineImage accepts plain base64 or a data URI.
func decodeInlineImage(value string) ([]byte, error) {
	if strings.HasPrefix(value, "data:") {
		if idx := strings.Index(value, "base64,"); idx >= 0 {
			value = value[idx+len("base64,"):]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(value))
}
