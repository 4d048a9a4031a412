package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"
)

// HX-Trigger events understood by web/static/app.js and the summary partial.
const (
	EventTransactionRecorded = "transaction:recorded"
	EventFormReset           = "form:reset"
	EventNotification        = "show-notification"
)

type noticeKind string

const (
	noticeSuccess noticeKind = "success"
	noticeError   noticeKind = "error"
)

var noticeDuration = map[noticeKind]time.Duration{
	noticeSuccess: 3 * time.Second,
	noticeError:   5 * time.Second,
}

// reply collects status, HX-Trigger events and body, then writes them in one go.
type reply struct {
	status      int
	events      map[string]any
	contentType string
	body        []byte
}

func newReply(status int) *reply {
	return &reply{status: status, events: map[string]any{}}
}

func (rp *reply) on(event string, detail any) *reply {
	rp.events[event] = detail
	return rp
}

// recorded announces a new ledger row so the summary partial refreshes.
func (rp *reply) recorded(month string, count int) *reply {
	return rp.on(EventTransactionRecorded, map[string]any{"month": month, "count": count})
}

func (rp *reply) resetForm() *reply {
	return rp.on(EventFormReset, struct{}{})
}

func (rp *reply) notify(kind noticeKind, msg string) *reply {
	return rp.on(EventNotification, map[string]any{
		"type":     string(kind),
		"message":  msg,
		"duration": noticeDuration[kind].Milliseconds(),
	})
}

func (rp *reply) html(fragment string) *reply {
	rp.contentType = "text/html; charset=utf-8"
	rp.body = []byte(fragment)
	return rp
}

// json encodes v as the body. An encoding failure turns the reply into a 500.
func (rp *reply) json(v any) *reply {
	data, err := json.Marshal(v)
	if err != nil {
		rp.status = http.StatusInternalServerError
		rp.contentType = "text/plain; charset=utf-8"
		rp.body = []byte("response encoding failed")
		return rp
	}
	rp.contentType = "application/json"
	rp.body = append(data, '\n')
	return rp
}

func (rp *reply) write(w http.ResponseWriter) {
	if rp.contentType != "" {
		w.Header().Set("Content-Type", rp.contentType)
	}
	if len(rp.events) > 0 {
		if raw, err := json.Marshal(rp.events); err == nil {
			w.Header().Set("HX-Trigger", string(raw))
		}
	}
	w.WriteHeader(rp.status)
	if len(rp.body) > 0 {
		_, _ = w.Write(rp.body)
	}
}

// htmlError renders msg, escaped, as the dashboard's alert fragment.
func htmlError(status int, msg string) *reply {
	return newReply(status).html(`<div class="error" role="alert">` + template.HTMLEscapeString(msg) + `</div>`)
}

func jsonError(status int, msg string) *reply {
	return newReply(status).json(map[string]string{"error": msg})
}
