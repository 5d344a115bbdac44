package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azamsaif47/Alfred-app/internal/domain/chat"
	"github.com/Azamsaif47/Alfred-app/internal/domain/citation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/history"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/telemetry"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/handlers"
	"github.com/Azamsaif47/Alfred-app/internal/utils/platformerrors"
)

// MockChatService is a function-field implementation of handlers.ChatService.
type MockChatService struct {
	SubmitMessageFunc func(ctx context.Context, userText, conversationID, displayName string) (*chat.Reply, error)
	GetHistoryFunc    func(ctx context.Context, conversationID string) (*history.History, error)
}

func (m *MockChatService) SubmitMessage(ctx context.Context, userText, conversationID, displayName string) (*chat.Reply, error) {
	if m.SubmitMessageFunc != nil {
		return m.SubmitMessageFunc(ctx, userText, conversationID, displayName)
	}
	return &chat.Reply{}, nil
}

func (m *MockChatService) GetHistory(ctx context.Context, conversationID string) (*history.History, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, conversationID)
	}
	return &history.History{}, nil
}

// MockThreadService is a function-field implementation of handlers.ThreadService.
type MockThreadService struct {
	CreateFunc func(ctx context.Context, displayName string) (*conversation.Conversation, error)
	ListFunc   func(ctx context.Context) ([]conversation.Conversation, error)
	RenameFunc func(ctx context.Context, conversationID, newName string) error
	DeleteFunc func(ctx context.Context, conversationID, expectedName string) (int64, error)
}

func (m *MockThreadService) Create(ctx context.Context, displayName string) (*conversation.Conversation, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, displayName)
	}
	return &conversation.Conversation{}, nil
}

func (m *MockThreadService) List(ctx context.Context) ([]conversation.Conversation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockThreadService) Rename(ctx context.Context, conversationID, newName string) error {
	if m.RenameFunc != nil {
		return m.RenameFunc(ctx, conversationID, newName)
	}
	return nil
}

func (m *MockThreadService) Delete(ctx context.Context, conversationID, expectedName string) (int64, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, conversationID, expectedName)
	}
	return 0, nil
}

func setupRouter(chatSvc *MockChatService, threadSvc *MockThreadService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	provider := handlers.NewProvider(chatSvc, threadSvc, telemetry.NewSanitizer("hashed", "test"), zerolog.Nop())

	router := gin.New()
	group := router.Group("/v1")
	group.GET("/threads", provider.Thread.List)
	group.POST("/threads", provider.Thread.Create)
	group.POST("/threads/run", provider.Chat.Run)
	group.GET("/threads/:thread_id/messages", provider.Chat.Messages)
	group.PATCH("/threads/:thread_id", provider.Thread.Rename)
	group.DELETE("/threads/:thread_id", provider.Thread.Delete)
	group.POST("/messages", provider.Chat.MessagesByBody)
	return router
}

func perform(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func notFound() error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "thread not found", nil, "")
}

func TestRunThread(t *testing.T) {
	source := "doc1.pdf"
	chatSvc := &MockChatService{
		SubmitMessageFunc: func(_ context.Context, userText, conversationID, displayName string) (*chat.Reply, error) {
			assert.Equal(t, "Tell me about asphalt", userText)
			assert.Equal(t, "thread-1", conversationID)
			assert.Equal(t, "Roads", displayName)
			return &chat.Reply{
				ResponseText: "Asphalt is durable.",
				Citations:    []citation.Citation{{Source: &source, PageContent: "Asphalt is durable."}},
			}, nil
		},
	}
	router := setupRouter(chatSvc, &MockThreadService{})

	w := perform(router, http.MethodPost, "/v1/threads/run", map[string]string{
		"user_input":  "Tell me about asphalt",
		"thread_id":   "thread-1",
		"thread_name": "Roads",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message  string           `json:"message"`
		Response string           `json:"response"`
		Sources  []map[string]any `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, "Asphalt is durable.", body.Response)
	require.Len(t, body.Sources, 1)
	assert.Equal(t, "doc1.pdf", body.Sources[0]["source"])
}

func TestRunThreadValidation(t *testing.T) {
	router := setupRouter(&MockChatService{}, &MockThreadService{})

	w := perform(router, http.MethodPost, "/v1/threads/run", map[string]string{"thread_id": "thread-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestRunThreadRejectsOverlongThreadID(t *testing.T) {
	chatSvc := &MockChatService{
		SubmitMessageFunc: func(context.Context, string, string, string) (*chat.Reply, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	router := setupRouter(chatSvc, &MockThreadService{})

	w := perform(router, http.MethodPost, "/v1/threads/run", map[string]string{
		"user_input": "hi",
		"thread_id":  strings.Repeat("a", conversation.MaxIDLength+1),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestRunThreadMapsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "agent failure", err: platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "agent run failed", nil, ""), status: http.StatusBadGateway},
		{name: "storage", err: platformerrors.NewError(context.Background(), platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to append turn", nil, ""), status: http.StatusInternalServerError},
		{name: "timeout", err: platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeTimeout, "agent run timed out", nil, ""), status: http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chatSvc := &MockChatService{
				SubmitMessageFunc: func(context.Context, string, string, string) (*chat.Reply, error) {
					return nil, tc.err
				},
			}
			router := setupRouter(chatSvc, &MockThreadService{})
			w := perform(router, http.MethodPost, "/v1/threads/run", map[string]string{"user_input": "hi", "thread_id": "t"})
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestGetMessages(t *testing.T) {
	chatSvc := &MockChatService{
		GetHistoryFunc: func(_ context.Context, conversationID string) (*history.History, error) {
			assert.Equal(t, "thread-1", conversationID)
			return &history.History{
				Transcript: []history.Entry{{ID: 1, ConversationID: "thread-1", Role: conversation.RoleAI, Content: "hello", Metadata: map[string]any{}, GroupID: "g1"}},
				Citations:  []citation.Citation{},
			}, nil
		},
	}
	router := setupRouter(chatSvc, &MockThreadService{})

	w := perform(router, http.MethodGet, "/v1/threads/thread-1/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body["response"], 1)
	assert.Equal(t, "hello", body["response"][0]["message_content"])
	assert.Equal(t, "AI", body["response"][0]["role"])
	assert.Empty(t, body["sources"])
}

func TestGetMessagesNotFound(t *testing.T) {
	chatSvc := &MockChatService{
		GetHistoryFunc: func(context.Context, string) (*history.History, error) { return nil, notFound() },
	}
	router := setupRouter(chatSvc, &MockThreadService{})

	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/v1/threads/missing/messages", nil).Code)
	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodPost, "/v1/messages", map[string]string{"thread_id": "missing"}).Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodPost, "/v1/messages", map[string]string{}).Code)
}

func TestListThreads(t *testing.T) {
	threadSvc := &MockThreadService{
		ListFunc: func(context.Context) ([]conversation.Conversation, error) {
			return []conversation.Conversation{{ID: "a", DisplayName: "Roads"}, {ID: "b", DisplayName: "new_chat"}}, nil
		},
	}
	router := setupRouter(&MockChatService{}, threadSvc)

	w := perform(router, http.MethodGet, "/v1/threads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"thread_id":"a","name":"Roads"},{"thread_id":"b","name":"new_chat"}]`, w.Body.String())
}

func TestListThreadsEmpty(t *testing.T) {
	router := setupRouter(&MockChatService{}, &MockThreadService{})

	w := perform(router, http.MethodGet, "/v1/threads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateThread(t *testing.T) {
	var gotName string
	threadSvc := &MockThreadService{
		CreateFunc: func(_ context.Context, displayName string) (*conversation.Conversation, error) {
			gotName = displayName
			return &conversation.Conversation{ID: "new-id", DisplayName: "new_chat"}, nil
		},
	}
	router := setupRouter(&MockChatService{}, threadSvc)

	w := perform(router, http.MethodPost, "/v1/threads", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"thread_id":"new-id","name":"new_chat"}`, w.Body.String())
	assert.Empty(t, gotName)

	w = perform(router, http.MethodPost, "/v1/threads", map[string]string{"name": "Roads"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Roads", gotName)
}

func TestRenameThread(t *testing.T) {
	threadSvc := &MockThreadService{
		RenameFunc: func(_ context.Context, conversationID, newName string) error {
			if conversationID == "missing" {
				return notFound()
			}
			assert.Equal(t, "Highways", newName)
			return nil
		},
	}
	router := setupRouter(&MockChatService{}, threadSvc)

	w := perform(router, http.MethodPatch, "/v1/threads/thread-1", map[string]string{"new_name": "Highways"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "detail")

	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodPatch, "/v1/threads/missing", map[string]string{"new_name": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodPatch, "/v1/threads/thread-1", map[string]string{}).Code)
}

func TestDeleteThread(t *testing.T) {
	threadSvc := &MockThreadService{
		DeleteFunc: func(_ context.Context, conversationID, expectedName string) (int64, error) {
			if expectedName == "wrong" {
				return 0, platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "conversation name does not match", nil, "")
			}
			assert.Equal(t, "thread-1", conversationID)
			return 5, nil
		},
	}
	router := setupRouter(&MockChatService{}, threadSvc)

	w := perform(router, http.MethodDelete, "/v1/threads/thread-1?name=Roads", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 5, body["deleted_messages"])

	assert.Equal(t, http.StatusConflict, perform(router, http.MethodDelete, "/v1/threads/thread-1?name=wrong", nil).Code)
}
