package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/infrastructure/auth"
	profilerepo "jan-server/services/messaging-api/internal/infrastructure/repository/profile"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/middlewares"
	v1 "jan-server/services/messaging-api/internal/interfaces/httpserver/routes/v1"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

const (
	convID = "conv_abcdefgh12345678"
	msgID  = "msg_abcdefgh12345678"
)

var (
	client = domain.Actor{ID: "client-1", Role: domain.RoleClient}
	staff  = domain.Actor{ID: "staff-1", Role: domain.RoleStaff}
)

// MockConversationService is a func-field mock of conversation.Service.
type MockConversationService struct {
	CreateFunc         func(ctx context.Context, actor domain.Actor, input conversation.CreateInput) (*conversation.Conversation, error)
	ReplyFunc          func(ctx context.Context, actor domain.Actor, conversationID string, input conversation.ReplyInput) (*conversation.Conversation, error)
	MarkReadFunc       func(ctx context.Context, actor domain.Actor, conversationID string) error
	UnreadCountFunc    func(ctx context.Context, actor domain.Actor) (int64, error)
	DeleteFunc         func(ctx context.Context, actor domain.Actor, conversationID string) error
	ListFunc           func(ctx context.Context, actor domain.Actor) ([]*conversation.Conversation, error)
	GetFunc            func(ctx context.Context, actor domain.Actor, conversationID string) (*conversation.Conversation, error)
	OpenAttachmentFunc func(ctx context.Context, actor domain.Actor, conversationID, messageID string) (*conversation.AttachmentContent, error)
}

func (m *MockConversationService) Create(ctx context.Context, actor domain.Actor, input conversation.CreateInput) (*conversation.Conversation, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, input)
	}
	return nil, nil
}

func (m *MockConversationService) Reply(ctx context.Context, actor domain.Actor, conversationID string, input conversation.ReplyInput) (*conversation.Conversation, error) {
	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, actor, conversationID, input)
	}
	return nil, nil
}

func (m *MockConversationService) MarkRead(ctx context.Context, actor domain.Actor, conversationID string) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, actor, conversationID)
	}
	return nil
}

func (m *MockConversationService) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	if m.UnreadCountFunc != nil {
		return m.UnreadCountFunc(ctx, actor)
	}
	return 0, nil
}

func (m *MockConversationService) Delete(ctx context.Context, actor domain.Actor, conversationID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, conversationID)
	}
	return nil
}

func (m *MockConversationService) List(ctx context.Context, actor domain.Actor) ([]*conversation.Conversation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, actor)
	}
	return nil, nil
}

func (m *MockConversationService) Get(ctx context.Context, actor domain.Actor, conversationID string) (*conversation.Conversation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, actor, conversationID)
	}
	return nil, nil
}

func (m *MockConversationService) OpenAttachment(ctx context.Context, actor domain.Actor, conversationID, messageID string) (*conversation.AttachmentContent, error) {
	if m.OpenAttachmentFunc != nil {
		return m.OpenAttachmentFunc(ctx, actor, conversationID, messageID)
	}
	return nil, nil
}

// setupRouter registers the v1 routes behind a stub auth middleware keyed by X-Test-Actor.
func setupRouter(t *testing.T, svc conversation.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	profiles := profilerepo.NewInMemoryRepository(
		&identity.Profile{ID: client.ID, DisplayName: "Carla Client", Role: domain.RoleClient},
		&identity.Profile{ID: staff.ID, DisplayName: "Sam Staff", Role: domain.RoleStaff},
	)
	directory := identity.NewService(profiles, nil, zerolog.Nop())
	cfg := &config.Config{MaxAttachmentBytes: 1024}
	provider := handlers.NewDefaultProvider(cfg, svc, directory, zerolog.Nop())

	stubAuth := func(c *gin.Context) {
		switch c.GetHeader("X-Test-Actor") {
		case client.ID:
			c.Set(auth.ActorContextKey, client)
		case staff.ID:
			c.Set(auth.ActorContextKey, staff)
		}
		c.Next()
	}

	r := gin.New()
	r.Use(middlewares.RequestID())
	v1.NewRoutes(provider, nil).Register(r, stubAuth)
	return r
}

func sampleConversation() *conversation.Conversation {
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return &conversation.Conversation{
		ID:      convID,
		Subject: "Invoice question",
		Participants: []conversation.Participant{
			{ActorID: client.ID, Role: domain.RoleClient, JoinedAt: at},
			{ActorID: staff.ID, Role: domain.RoleStaff, JoinedAt: at},
		},
		Messages: []conversation.Message{{
			ID:         msgID,
			SenderID:   client.ID,
			Body:       "hello",
			Attachment: &conversation.Attachment{Name: "invoice.pdf", Reference: "attachments/2026/02/x.pdf", Size: 4, MediaType: "application/pdf"},
			CreatedAt:  at,
		}},
		LastActivityAt: at,
		CreatedAt:      at,
	}
}

func do(r *gin.Engine, method, path, actor string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if actor != "" {
		req.Header.Set("X-Test-Actor", actor)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	detail, ok := body["error"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return detail["type"].(string)
}

func TestCreateConversation_JSON(t *testing.T) {
	var got conversation.CreateInput
	svc := &MockConversationService{
		CreateFunc: func(ctx context.Context, actor domain.Actor, input conversation.CreateInput) (*conversation.Conversation, error) {
			assert.Equal(t, client, actor)
			got = input
			return sampleConversation(), nil
		},
	}
	r := setupRouter(t, svc)

	body := `{"target_id":"staff-1","subject":"Invoice question","body":"hello"}`
	w := do(r, http.MethodPost, "/v1/conversations", client.ID, strings.NewReader(body), "application/json")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "staff-1", got.TargetID)
	assert.Equal(t, "Invoice question", got.Subject)
	assert.Nil(t, got.Attachment)

	resp := decode(t, w)
	assert.Equal(t, convID, resp["id"])
	assert.Equal(t, "conversation", resp["object"])

	participants := resp["participants"].([]any)
	require.Len(t, participants, 2)
	assert.Equal(t, "Carla Client", participants[0].(map[string]any)["display_name"])
	assert.Equal(t, "Sam Staff", participants[1].(map[string]any)["display_name"])

	messages := resp["messages"].([]any)
	require.Len(t, messages, 1)
	attachment := messages[0].(map[string]any)["attachment"].(map[string]any)
	assert.Equal(t, "/v1/conversations/"+convID+"/messages/"+msgID+"/attachment", attachment["download_url"])
	assert.NotContains(t, w.Body.String(), "attachments/2026/02/x.pdf")
}

func TestCreateConversation_Multipart(t *testing.T) {
	var got conversation.CreateInput
	svc := &MockConversationService{
		CreateFunc: func(ctx context.Context, actor domain.Actor, input conversation.CreateInput) (*conversation.Conversation, error) {
			got = input
			return sampleConversation(), nil
		},
	}
	r := setupRouter(t, svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("target_id", "staff-1"))
	require.NoError(t, mw.WriteField("subject", "Scan"))
	require.NoError(t, mw.WriteField("body", "see attached"))
	part, err := mw.CreateFormFile("file", "scan.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := do(r, http.MethodPost, "/v1/conversations", client.ID, &buf, mw.FormDataContentType())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Scan", got.Subject)
	require.NotNil(t, got.Attachment)
	assert.Equal(t, "scan.pdf", got.Attachment.Name)
	assert.Equal(t, []byte("%PDF-1.4 test"), got.Attachment.Data)
}

func TestCreateConversation_MalformedJSON(t *testing.T) {
	called := false
	svc := &MockConversationService{
		CreateFunc: func(ctx context.Context, actor domain.Actor, input conversation.CreateInput) (*conversation.Conversation, error) {
			called = true
			return nil, nil
		},
	}
	r := setupRouter(t, svc)

	w := do(r, http.MethodPost, "/v1/conversations", client.ID, strings.NewReader("{"), "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", errorType(t, w))
	assert.False(t, called)
}

func TestRoutes_RequireActor(t *testing.T) {
	r := setupRouter(t, &MockConversationService{})

	w := do(r, http.MethodGet, "/v1/conversations", "", nil, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized_error", errorType(t, w))
}

func TestRoutes_ErrorKindsMapToStatus(t *testing.T) {
	tests := []struct {
		name     string
		errType  platformerrors.ErrorType
		status   int
		wireType string
	}{
		{"invalid argument", platformerrors.ErrorTypeValidation, http.StatusBadRequest, "validation_error"},
		{"forbidden", platformerrors.ErrorTypeForbidden, http.StatusForbidden, "forbidden_error"},
		{"not found", platformerrors.ErrorTypeNotFound, http.StatusNotFound, "not_found_error"},
		{"dependency failure", platformerrors.ErrorTypeExternal, http.StatusBadGateway, "dependency_error"},
		{"store failure", platformerrors.ErrorTypeDatabaseError, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockConversationService{
				ReplyFunc: func(ctx context.Context, actor domain.Actor, conversationID string, input conversation.ReplyInput) (*conversation.Conversation, error) {
					return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, tt.errType, "boom", nil, "test-code")
				},
			}
			r := setupRouter(t, svc)

			w := do(r, http.MethodPost, "/v1/conversations/"+convID+"/messages", staff.ID,
				strings.NewReader(`{"body":"hi"}`), "application/json")

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			detail := body["error"].(map[string]any)
			assert.Equal(t, tt.wireType, detail["type"])
			assert.Equal(t, "test-code", detail["code"])
			assert.NotEmpty(t, detail["request_id"])
		})
	}
}

func TestReply_PassesConversationID(t *testing.T) {
	svc := &MockConversationService{
		ReplyFunc: func(ctx context.Context, actor domain.Actor, conversationID string, input conversation.ReplyInput) (*conversation.Conversation, error) {
			assert.Equal(t, staff, actor)
			assert.Equal(t, convID, conversationID)
			assert.Equal(t, "on it", input.Body)
			return sampleConversation(), nil
		},
	}
	r := setupRouter(t, svc)

	w := do(r, http.MethodPost, "/v1/conversations/"+convID+"/messages", staff.ID,
		strings.NewReader(`{"body":"on it"}`), "application/json")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["has_unread"])
}

func TestListConversations(t *testing.T) {
	svc := &MockConversationService{
		ListFunc: func(ctx context.Context, actor domain.Actor) ([]*conversation.Conversation, error) {
			return []*conversation.Conversation{sampleConversation()}, nil
		},
	}
	r := setupRouter(t, svc)

	w := do(r, http.MethodGet, "/v1/conversations", client.ID, nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "list", resp["object"])
	data := resp["data"].([]any)
	require.Len(t, data, 1)
	entry := data[0].(map[string]any)
	assert.Equal(t, float64(1), entry["message_count"])
	assert.Equal(t, false, entry["has_unread"])
	assert.NotContains(t, entry, "messages")
}

func TestUnreadCount(t *testing.T) {
	svc := &MockConversationService{
		UnreadCountFunc: func(ctx context.Context, actor domain.Actor) (int64, error) {
			return 3, nil
		},
	}
	r := setupRouter(t, svc)

	w := do(r, http.MethodGet, "/v1/conversations/unread-count", staff.ID, nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"object":"unread_count","count":3}`, w.Body.String())
}

func TestMarkReadAndDelete(t *testing.T) {
	var marked, deleted string
	svc := &MockConversationService{
		MarkReadFunc: func(ctx context.Context, actor domain.Actor, conversationID string) error {
			marked = conversationID
			return nil
		},
		DeleteFunc: func(ctx context.Context, actor domain.Actor, conversationID string) error {
			deleted = conversationID
			return nil
		},
	}
	r := setupRouter(t, svc)

	w := do(r, http.MethodPost, "/v1/conversations/"+convID+"/read", staff.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, convID, marked)
	assert.JSONEq(t, `{"id":"`+convID+`","object":"conversation.read","read":true}`, w.Body.String())

	w = do(r, http.MethodDelete, "/v1/conversations/"+convID, client.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, convID, deleted)
	assert.JSONEq(t, `{"id":"`+convID+`","object":"conversation.deleted","deleted":true}`, w.Body.String())
}

func TestGetConversation_NotFound(t *testing.T) {
	svc := &MockConversationService{
		GetFunc: func(ctx context.Context, actor domain.Actor, conversationID string) (*conversation.Conversation, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "")
		},
	}
	r := setupRouter(t, svc)

	w := do(r, http.MethodGet, "/v1/conversations/"+convID, client.ID, nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found_error", errorType(t, w))
}

func TestDownloadAttachment(t *testing.T) {
	svc := &MockConversationService{
		OpenAttachmentFunc: func(ctx context.Context, actor domain.Actor, conversationID, messageID string) (*conversation.AttachmentContent, error) {
			assert.Equal(t, convID, conversationID)
			assert.Equal(t, msgID, messageID)
			return &conversation.AttachmentContent{
				Attachment: conversation.Attachment{Name: "invoice.pdf", Size: 4, MediaType: "application/pdf"},
				Body:       io.NopCloser(strings.NewReader("%PDF")),
			}, nil
		},
	}
	r := setupRouter(t, svc)

	w := do(r, http.MethodGet, "/v1/conversations/"+convID+"/messages/"+msgID+"/attachment", client.ID, nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=invoice.pdf`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", w.Body.String())
}

func TestIdentityRoutes(t *testing.T) {
	r := setupRouter(t, &MockConversationService{})

	w := do(r, http.MethodGet, "/v1/staff", client.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Sam Staff", data[0].(map[string]any)["display_name"])

	w = do(r, http.MethodGet, "/v1/profiles/me", client.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, client.ID, me["id"])
	assert.Equal(t, "client", me["role"])
}
