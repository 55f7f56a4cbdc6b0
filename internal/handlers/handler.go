package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/csg33k/timeoff-request/internal/domain"
	"github.com/csg33k/timeoff-request/internal/formview"
	"github.com/csg33k/timeoff-request/internal/ports"
	"github.com/csg33k/timeoff-request/internal/submission"
	"github.com/csg33k/timeoff-request/internal/templates"
	"github.com/csg33k/timeoff-request/internal/token"
)

// MsgExpired is shown when a post carries a token this server never issued
// or that has expired.
const MsgExpired = "This form has expired. Please try again."

// maxFormBytes bounds the in-memory part of a multipart post.
const maxFormBytes = 1 << 20

// Deps are the collaborators of the web form. Each is optional: a nil Backend
// reports every submission as not configured, and the others disable their
// feature when nil.
type Deps struct {
	Backend  ports.Backend
	Tokens   *token.Registry
	Quotes   ports.QuoteSource
	Journal  ports.AttemptJournal
	Receipts ports.ReceiptGenerator
	Logger   *slog.Logger
}

type Handler struct {
	backend  ports.Backend
	tokens   *token.Registry
	quotes   ports.QuoteSource
	journal  ports.AttemptJournal
	receipts ports.ReceiptGenerator
	log      *slog.Logger
}

func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{
		backend:  d.Backend,
		tokens:   d.Tokens,
		quotes:   d.Quotes,
		journal:  d.Journal,
		receipts: d.Receipts,
		log:      d.Logger,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/submit", h.submit)
	r.Get("/attempts", h.listAttempts)
	r.Get("/attempts/{id}/receipt.pdf", h.receipt)
	r.Get("/healthz", h.healthz)
	return r
}

// controller builds the per-page controller for view. Each rendered form is
// its own FormView, so nothing is shared between requests.
func (h *Handler) controller(r *http.Request, view ports.FormView) *submission.Controller {
	opts := []submission.Option{
		submission.WithLogger(h.log.With("request_id", middleware.GetReqID(r.Context()))),
		submission.WithJournal(h.journal),
	}
	if h.tokens != nil {
		opts = append(opts, submission.WithTokens(h.tokens))
	}
	if h.quotes != nil {
		opts = append(opts, submission.WithQuotes(h.quotes))
	}
	return submission.New(view, h.backend, opts...)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	view := formview.New(nil)
	h.controller(r, view).Init()
	render(w, r, templates.Page(stateOf(view)))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, err.Error(), 400)
		return
	}
	view := formview.FromValues(r.PostForm)
	ctl := h.controller(r, view)

	// A filled honeypot is blocked by the controller whatever the token says.
	tok := view.FieldValue(domain.FieldFormSecret)
	claimed := false
	if h.tokens != nil && view.FieldValue(domain.FieldWebsite) == "" {
		if !h.tokens.Claim(tok) {
			h.log.Warn("form token rejected",
				"request_id", middleware.GetReqID(r.Context()),
				"kind", string(domain.KindTokenRejected))
			ctl.Init()
			view.SetStatus(domain.Status{Message: MsgExpired, Style: domain.StyleError})
			renderForm(w, r, view)
			return
		}
		claimed = true
	}

	// The claimed token is used up only by a success; any other outcome,
	// including a panic below, hands it back.
	succeeded := false
	defer func() {
		if claimed && !succeeded {
			h.tokens.Release(tok)
		}
	}()

	succeeded = ctl.HandleSubmit(r.Context()).Succeeded()
	renderForm(w, r, view)
}

func (h *Handler) listAttempts(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		http.Error(w, "journal disabled", 404)
		return
	}
	list, err := h.journal.ListAttempts(r.Context(), 200)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	render(w, r, templates.Attempts(list))
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil || h.receipts == nil {
		http.Error(w, "journal disabled", 404)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}
	a, err := h.journal.GetAttempt(r.Context(), id)
	if errors.Is(err, domain.ErrAttemptMissing) {
		http.Error(w, err.Error(), 404)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if a.Outcome != domain.OutcomeSuccess {
		http.Error(w, "request was not submitted", 409)
		return
	}
	var buf bytes.Buffer
	if err := h.receipts.Generate(r.Context(), a, &buf); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	filename := fmt.Sprintf("timeoff_%d_%s.pdf", a.ID, a.CreatedAt.Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buf.Bytes())
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.backend == nil || !h.backend.Configured() {
		w.Write([]byte("ok (backend not configured)\n"))
		return
	}
	w.Write([]byte("ok\n"))
}

func stateOf(v *formview.Memory) templates.FormState {
	return templates.FormState{
		Fields:        v.Fields(),
		Focus:         v.Focused(),
		Status:        v.Status(),
		SubmitEnabled: v.SubmitEnabled(),
	}
}

// renderForm answers htmx with the panel fragment and plain posts with the
// whole page.
func renderForm(w http.ResponseWriter, r *http.Request, v *formview.Memory) {
	if r.Header.Get("HX-Request") == "true" {
		render(w, r, templates.FormPanel(stateOf(v)))
		return
	}
	render(w, r, templates.Page(stateOf(v)))
}

// render writes a templ component to the response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}

// requestLogger logs one line per request with its status and duration.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
