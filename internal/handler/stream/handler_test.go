package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/chatbox/backend/internal/model/chat"
	"github.com/zhouzirui/chatbox/backend/internal/model/variant"
	chatservice "github.com/zhouzirui/chatbox/backend/internal/service/chat"
)

type fakeStreamer struct {
	deltas []string
	err    error
}

func (f *fakeStreamer) Complete(context.Context, []chat.Turn) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return strings.Join(f.deltas, ""), nil
}

func (f *fakeStreamer) CompleteStream(_ context.Context, _ []chat.Turn, onDelta func(string)) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	for _, delta := range f.deltas {
		onDelta(delta)
	}
	return strings.Join(f.deltas, ""), nil
}

func setup(t *testing.T, client chatservice.Completer, variantID string) (*chi.Mux, string) {
	t.Helper()
	chatSvc := chatservice.NewService(variant.NewMemoryStore(variant.Seed()), client, chatservice.Options{})
	session, err := chatSvc.CreateSession(context.Background(), variantID)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	r := chi.NewRouter()
	New(chatSvc).RegisterRoutes(r)
	return r, session.ID
}

func readEvents(t *testing.T, body string) []StreamResponse {
	t.Helper()
	var events []StreamResponse
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event StreamResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatalf("decode event %q: %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func eventNames(events []StreamResponse) []string {
	names := make([]string, len(events))
	for i, event := range events {
		names[i] = event.Event
	}
	return names
}

func TestStreamEventOrder(t *testing.T) {
	r, sessionID := setup(t, &fakeStreamer{deltas: []string{"What a ", "great ", "day"}}, "sentiment")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+sessionID+"?message=hello", nil))

	if got := resp.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}

	events := readEvents(t, resp.Body.String())
	want := []string{"start", "delta", "delta", "delta", "message", "sentiment", "end"}
	if strings.Join(eventNames(events), ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected events: %v", eventNames(events))
	}
	if events[4].Turn == nil || events[4].Turn.Content != "What a great day" {
		t.Fatalf("unexpected message event: %+v", events[4])
	}
	if events[5].Sentiment == nil || events[5].Summary == nil || events[5].Summary.Count != 1 {
		t.Fatalf("unexpected sentiment event: %+v", events[5])
	}
}

func TestStreamWithoutSentiment(t *testing.T) {
	r, sessionID := setup(t, &fakeStreamer{deltas: []string{"hi"}}, "chatbox")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+sessionID+"?message=hello", nil))

	names := strings.Join(eventNames(readEvents(t, resp.Body.String())), ",")
	if names != "start,delta,message,end" {
		t.Fatalf("unexpected events: %s", names)
	}
}

func TestStreamCompletionError(t *testing.T) {
	r, sessionID := setup(t, &fakeStreamer{err: errors.New("service unavailable")}, "chatbox")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+sessionID+"?message=hello", nil))

	events := readEvents(t, resp.Body.String())
	last := events[len(events)-1]
	if last.Event != "error" || !strings.Contains(last.Error, "service unavailable") {
		t.Fatalf("expected error event, got %+v", last)
	}
}

func TestStreamRequiresMessage(t *testing.T) {
	r, sessionID := setup(t, &fakeStreamer{}, "chatbox")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+sessionID, nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStreamMissingSession(t *testing.T) {
	r, _ := setup(t, &fakeStreamer{}, "chatbox")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/missing?message=hi", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
