package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/utils/idgen"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

const (
	conversationIDPrefix = "conv"
	messageIDPrefix      = "msg"
	idLength             = 16
)

// CreateInput holds the fields supplied when a client opens a conversation.
type CreateInput struct {
	TargetID   string `validate:"required,opaque_id"`
	Subject    string `validate:"required,max=200"`
	Body       string `validate:"required,max=10000"`
	Attachment *AttachmentUpload
}

// ReplyInput holds the fields of an appended message.
type ReplyInput struct {
	Body       string `validate:"required,max=10000"`
	Attachment *AttachmentUpload
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("opaque_id", func(fl validator.FieldLevel) bool {
		return domain.ValidActorID(fl.Field().String())
	})
	return v
}

func (in *CreateInput) normalize() {
	in.TargetID = strings.TrimSpace(in.TargetID)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Body = strings.TrimSpace(in.Body)
}

func (in *ReplyInput) normalize() {
	in.Body = strings.TrimSpace(in.Body)
}

// ValidConversationID reports whether id has the conversation ID shape.
func ValidConversationID(id string) bool {
	return idgen.ValidateIDFormat(id, conversationIDPrefix, idLength)
}

// ValidMessageID reports whether id has the message ID shape.
func ValidMessageID(id string) bool {
	return idgen.ValidateIDFormat(id, messageIDPrefix, idLength)
}

func validationError(ctx context.Context, err error, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
		describeValidation(err), err, code)
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "opaque_id":
		return fmt.Sprintf("%s is not a well-formed identifier", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func (s *service) validateActor(ctx context.Context, actor domain.Actor) error {
	if !domain.ValidActorID(actor.ID) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"actor id is not a well-formed identifier", nil, "3b7c1e2d-9f4a-4c5b-8d6e-0a1b2c3d4e51")
	}
	if actor.Role == domain.RoleUnknown {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"actor role is not recognised", nil, "4c8d2f3e-0a5b-4d6c-9e7f-1b2c3d4e5f62")
	}
	return nil
}

func (s *service) validateConversationID(ctx context.Context, id string) error {
	if !ValidConversationID(id) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"conversation id is not a well-formed identifier", nil, "5d9e3a4f-1b6c-4e7d-8f8a-2c3d4e5f6a73")
	}
	return nil
}

func (s *service) validateUpload(ctx context.Context, upload *AttachmentUpload) error {
	if upload == nil {
		return nil
	}
	if len(upload.Data) == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"attachment is empty", nil, "6e0f4b5a-2c7d-4f8e-9a9b-3d4e5f6a7b84")
	}
	if int64(len(upload.Data)) > s.maxAttachmentBytes {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("attachment exceeds max size of %d bytes", s.maxAttachmentBytes), nil, "7f1a5c6b-3d8e-4a9f-8b0c-4e5f6a7b8c95")
	}
	return nil
}
