package http

import (
	"bytes"
	"errors"
	"net/http"

	"financeiro/internal/core"
	"financeiro/internal/log"
)

// SavedMessage confirms a recorded transaction.
const SavedMessage = "Saved!"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := buildDashboardView(s.svc.Dashboard(r.Context()), s.svc.Transactions(r.Context()))
	view.Today = s.now().Format(core.DateLayout)
	s.render(w, r, "index.html", view)
}

func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	view := buildDashboardView(s.svc.Dashboard(r.Context()), s.svc.Transactions(r.Context()))
	s.render(w, r, "summary", view)
}

// render executes into a buffer so a failing template never leaves a
// half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.events.Failure(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.LogFields{"template": name})
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, p, http.StatusBadRequest, "Invalid request format")
		return
	}

	candidate, err := ParseTransaction(p, s.now())
	if err != nil {
		log.FromContext(ctx).InfoContext(ctx, "Rejected transaction", log.FieldError, err)
		s.fail(w, r, p, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	records, err := s.svc.Record(ctx, candidate)
	if err != nil {
		var ve *core.ValidationError
		var we *core.StorageWriteError
		switch {
		case errors.As(err, &ve):
			s.fail(w, r, p, http.StatusUnprocessableEntity, validationMessage(err))
		case errors.As(err, &we):
			s.events.Failure(ctx, "Ledger write failed", err, log.ComponentHTTP, log.OpAppend,
				log.NewFields().WithErrorType(log.ErrorTypeStorageWrite))
			s.fail(w, r, p, http.StatusInternalServerError, "Could not save the transaction. The ledger was not changed.")
		default:
			s.events.Failure(ctx, "Record failed", err, log.ComponentHTTP, log.OpAppend,
				log.NewFields().WithErrorType(log.ErrorTypeInternal))
			s.fail(w, r, p, http.StatusInternalServerError, "Could not record the transaction.")
		}
		return
	}

	switch {
	case wantsJSON(r, p):
		newReply(http.StatusCreated).
			json(map[string]any{
				"transaction": toTransactionJSON(candidate),
				"count":       len(records),
			}).
			write(w)
	case isHTMX(r):
		newReply(http.StatusOK).
			recorded(candidate.Date.MonthKey(), len(records)).
			resetForm().
			notify(noticeSuccess, SavedMessage).
			html(`<div class="success" role="status">` + SavedMessage + `</div>`).
			write(w)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// fail answers with an HTML fragment for the dashboard or a JSON object for
// API clients.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, p *RequestBodyParser, status int, msg string) {
	if wantsJSON(r, p) {
		jsonError(status, msg).write(w)
		return
	}
	rp := htmlError(status, msg)
	if isHTMX(r) {
		rp.notify(noticeError, msg)
	}
	rp.write(w)
}

func validationMessage(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	newReply(http.StatusOK).json(toSummaryJSON(s.svc.Dashboard(r.Context()))).write(w)
}

func (s *Server) handleAPITransactions(w http.ResponseWriter, r *http.Request) {
	records := s.svc.Transactions(r.Context())
	out := make([]transactionJSON, 0, len(records))
	for _, t := range records {
		out = append(out, toTransactionJSON(t))
	}
	newReply(http.StatusOK).json(map[string]any{
		"count":        len(out),
		"transactions": out,
	}).write(w)
}
