package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/chatbox/backend/internal/analysis/sentiment"
	"github.com/zhouzirui/chatbox/backend/internal/model/chat"
	"github.com/zhouzirui/chatbox/backend/internal/model/variant"
	chatservice "github.com/zhouzirui/chatbox/backend/internal/service/chat"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, []chat.Turn) (string, error) {
	return s.reply, s.err
}

func setupRouter(client chatservice.Completer) (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService(variant.NewMemoryStore(variant.Seed()), client, chatservice.Options{CompletionTimeout: time.Second})
	handler := New(chatSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler, variantID string) chat.Session {
	t.Helper()
	resp := doJSON(r, http.MethodPost, "/session", map[string]string{"variantId": variantID})
	require.Equal(t, http.StatusCreated, resp.Code)

	var session chat.Session
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	return session
}

func TestCreateSessionValidVariant(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{reply: "hi"})
	session := createSession(t, r, "chatbox")
	assert.Equal(t, "chatbox", session.VariantID)
	assert.NotEmpty(t, session.ID)
}

func TestCreateSessionInvalidVariant(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{})

	resp := doJSON(r, http.MethodPost, "/session", map[string]string{"variantId": "non-existent"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateSessionMissingVariantID(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{})

	resp := doJSON(r, http.MethodPost, "/session", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateSessionInvalidBody(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{})

	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewReader([]byte("{")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSubmitReturnsTurnAndSummary(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{reply: "What a wonderful and happy idea!"})
	session := createSession(t, r, "sentiment")

	resp := doJSON(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, resp.Code)

	var body SubmitResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, chat.RoleAssistant, body.Turn.Role)
	require.NotNil(t, body.Turn.Sentiment)
	assert.True(t, body.Summary.Enabled)
	assert.Equal(t, 1, body.Summary.Count)

	turns := doJSON(r, http.MethodGet, "/session/"+session.ID+"/turns", nil)
	require.Equal(t, http.StatusOK, turns.Code)
	var transcript TurnsResponse
	require.NoError(t, json.Unmarshal(turns.Body.Bytes(), &transcript))
	assert.Len(t, transcript.Turns, 2)

	summaryResp := doJSON(r, http.MethodGet, "/session/"+session.ID+"/summary", nil)
	require.Equal(t, http.StatusOK, summaryResp.Code)
	var summary sentiment.Summary
	require.NoError(t, json.Unmarshal(summaryResp.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Count)
}

func TestSubmitEmptyText(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{reply: "unused"})
	session := createSession(t, r, "chatbox")

	resp := doJSON(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSubmitCompletionFailure(t *testing.T) {
	r, svc := setupRouter(&stubCompleter{err: errors.New("rate limited upstream")})
	session := createSession(t, r, "chatbox")

	resp := doJSON(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"text": "hello"})
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Contains(t, resp.Body.String(), "An error occurred: rate limited upstream")

	turns, err := svc.LoadTranscript(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestSubmitMissingSession(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{})

	resp := doJSON(r, http.MethodPost, "/session/missing/messages", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSummaryDisabledVariant(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{})
	session := createSession(t, r, "chatbox")

	resp := doJSON(r, http.MethodGet, "/session/"+session.ID+"/summary", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"enabled":false`)
}

func TestEndSession(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{})
	session := createSession(t, r, "chatbox")

	resp := doJSON(r, http.MethodDelete, "/session/"+session.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	again := doJSON(r, http.MethodGet, "/session/"+session.ID+"/turns", nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestSubmitMiddlewareOnlyWrapsMessages(t *testing.T) {
	chatSvc := chatservice.NewService(variant.NewMemoryStore(variant.Seed()), &stubCompleter{reply: "ok"}, chatservice.Options{})
	blocked := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}

	r := chi.NewRouter()
	New(chatSvc, blocked).RegisterRoutes(r)
	session := createSession(t, r, "chatbox")

	resp := doJSON(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)

	turns := doJSON(r, http.MethodGet, "/session/"+session.ID+"/turns", nil)
	assert.Equal(t, http.StatusOK, turns.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusFor(chatservice.ErrBusy))
	assert.Equal(t, http.StatusBadGateway, StatusFor(&chatservice.CompletionError{Err: errors.New("x")}))
	assert.Equal(t, http.StatusNotFound, StatusFor(chatservice.ErrSessionNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("other")))
}
