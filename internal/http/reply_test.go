package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReplyHTML(t *testing.T) {
	w := httptest.NewRecorder()
	newReply(http.StatusOK).html("<p>test</p>").write(w)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "<p>test</p>" {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := w.Header().Get("HX-Trigger"); got != "" {
		t.Errorf("HX-Trigger = %q, want none", got)
	}
}

func TestReplyEvents(t *testing.T) {
	w := httptest.NewRecorder()
	newReply(http.StatusOK).
		recorded("2024-01", 3).
		resetForm().
		notify(noticeSuccess, "Saved!").
		write(w)

	var events map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &events); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	for _, name := range []string{EventTransactionRecorded, EventFormReset, EventNotification} {
		if _, ok := events[name]; !ok {
			t.Errorf("missing event %q", name)
		}
	}

	var recorded struct {
		Month string `json:"month"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(events[EventTransactionRecorded], &recorded); err != nil {
		t.Fatalf("decode %s: %v", EventTransactionRecorded, err)
	}
	if recorded.Month != "2024-01" || recorded.Count != 3 {
		t.Errorf("%s = %+v", EventTransactionRecorded, recorded)
	}

	var notice struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int64  `json:"duration"`
	}
	if err := json.Unmarshal(events[EventNotification], &notice); err != nil {
		t.Fatalf("decode %s: %v", EventNotification, err)
	}
	if notice.Type != "success" || notice.Message != "Saved!" || notice.Duration != 3000 {
		t.Errorf("%s = %+v", EventNotification, notice)
	}
}

func TestReplyJSON(t *testing.T) {
	w := httptest.NewRecorder()
	newReply(http.StatusCreated).json(map[string]int{"count": 2}).write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if strings.TrimSpace(w.Body.String()) != `{"count":2}` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestReplyJSONEncodingFailure(t *testing.T) {
	w := httptest.NewRecorder()
	newReply(http.StatusOK).json(map[string]any{"bad": make(chan int)}).write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestHTMLError(t *testing.T) {
	tests := []struct {
		status int
		msg    string
	}{
		{http.StatusBadRequest, "bad"},
		{http.StatusUnprocessableEntity, "invalid amount: amount must not be negative"},
		{http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		htmlError(tt.status, tt.msg).write(w)
		if w.Code != tt.status {
			t.Errorf("status = %d, want %d", w.Code, tt.status)
		}
		if !strings.Contains(w.Body.String(), `class="error"`) || !strings.Contains(w.Body.String(), tt.msg) {
			t.Errorf("body = %q", w.Body.String())
		}
	}
}

func TestHTMLErrorEscapes(t *testing.T) {
	w := httptest.NewRecorder()
	htmlError(http.StatusBadRequest, "<script>alert(1)</script>").write(w)
	if strings.Contains(w.Body.String(), "<script>") {
		t.Errorf("message not escaped: %q", w.Body.String())
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	jsonError(http.StatusUnprocessableEntity, "invalid amount").write(w)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != http.StatusUnprocessableEntity || body["error"] != "invalid amount" {
		t.Errorf("status = %d, body = %v", w.Code, body)
	}
}
