// Package conversationreq contains HTTP request DTOs and binders for conversation endpoints.
package conversationreq

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

// FilePart is the multipart field carrying an attachment.
const FilePart = "file"

// multipartOverhead leaves room for form fields and boundaries on top of the file itself.
const multipartOverhead = 1 << 20

// CreateConversationRequest is the body of POST /v1/conversations.
type CreateConversationRequest struct {
	TargetID string `json:"target_id" form:"target_id"`
	Subject  string `json:"subject" form:"subject"`
	Body     string `json:"body" form:"body"`
}

// ReplyRequest is the body of POST /v1/conversations/{id}/messages.
type ReplyRequest struct {
	Body string `json:"body" form:"body"`
}

// BindCreate reads a JSON or multipart create request.
func BindCreate(c *gin.Context, maxAttachmentBytes int64) (conversation.CreateInput, error) {
	var req CreateConversationRequest
	upload, err := bind(c, &req, maxAttachmentBytes)
	if err != nil {
		return conversation.CreateInput{}, err
	}
	return conversation.CreateInput{
		TargetID:   req.TargetID,
		Subject:    req.Subject,
		Body:       req.Body,
		Attachment: upload,
	}, nil
}

// BindReply reads a JSON or multipart reply request.
func BindReply(c *gin.Context, maxAttachmentBytes int64) (conversation.ReplyInput, error) {
	var req ReplyRequest
	upload, err := bind(c, &req, maxAttachmentBytes)
	if err != nil {
		return conversation.ReplyInput{}, err
	}
	return conversation.ReplyInput{Body: req.Body, Attachment: upload}, nil
}

func bind(c *gin.Context, dst any, maxAttachmentBytes int64) (*conversation.AttachmentUpload, error) {
	ctx := c.Request.Context()
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(dst); err != nil {
			return nil, invalidBody(ctx, err)
		}
		return nil, nil
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAttachmentBytes+multipartOverhead)
	if err := c.ShouldBind(dst); err != nil {
		return nil, invalidBody(ctx, err)
	}
	return readFile(c, maxAttachmentBytes)
}

// readFile returns the optional file part. At most maxBytes+1 bytes are read so oversize files stay detectable.
func readFile(c *gin.Context, maxBytes int64) (*conversation.AttachmentUpload, error) {
	ctx := c.Request.Context()
	file, header, err := c.Request.FormFile(FilePart)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, invalidBody(ctx, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, invalidBody(ctx, err)
	}
	return &conversation.AttachmentUpload{Name: header.Filename, Data: data}, nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func invalidBody(ctx context.Context, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"request body is too large", err, "0b5c7a2e-4d31-4f6a-b8e9-5c2d1a7f3e60")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
		"invalid request body", err, "9e4a6b1d-3c20-4e59-a7d8-4b1c0f6e2d5f")
}
