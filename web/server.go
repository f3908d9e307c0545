// Package web serves the bill splitter over HTTP.
package web

import (
	"bytes"
	"embed"
	"encoding/hex"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/billbatista/acasinha-splitter/ledger"
	"github.com/billbatista/acasinha-splitter/middleware"
	"github.com/billbatista/acasinha-splitter/money"
	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/blake2b"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	engine *ledger.Engine
	tmpl   *template.Template
}

func NewServer(engine *ledger.Engine) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"money": money.Format,
		"join":  func(people []string) string { return strings.Join(people, ", ") },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{engine: engine, tmpl: tmpl}, nil
}

// Routes returns the HTTP handler. Every form post redirects back to the
// page; rejected input comes back as ?error=<message>.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.EventMetadata)

	router.Get("/", s.index)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Get("/state", s.state)

	router.Post("/bill", s.setBill)
	router.Post("/payments", s.submitPayment)
	router.Post("/people", s.addPerson)
	router.Post("/people/remove", s.removePerson)
	router.Post("/transactions/{index}/delete", s.deleteTransaction)
	router.Post("/undo", s.undo)
	router.Post("/redo", s.redo)
	router.Post("/reset", s.reset)

	return router
}

type pageData struct {
	View      ledger.View
	Active    bool
	CreatedAt string
	Error     string
	Success   string
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	v := s.engine.View()
	data := pageData{
		View:      v,
		Active:    v.Phase == ledger.PhaseActive,
		CreatedAt: v.State.CreatedAt.Local().Format(time.DateTime),
		Error:     r.URL.Query().Get("error"),
		Success:   r.URL.Query().Get("success"),
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("failed to render page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// state serves the persisted JSON form of the ledger. The ETag is a
// BLAKE2b digest of the body.
func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	body, err := ledger.Encode(s.engine.State())
	if err != nil {
		slog.Error("failed to encode state", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sum := blake2b.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("content-type", "application/json")
	w.Write(body)
}

func (s *Server) setBill(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	if err := s.engine.SetBill(r.Context(), r.FormValue("amount")); err != nil {
		s.fail(w, r, err)
		return
	}
	bill := s.engine.State().BillAmount
	redirect(w, r, "success", "Bill set to: "+money.Format(bill))
}

func (s *Server) submitPayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	err := s.engine.SubmitPayment(r.Context(), r.FormValue("amount"), r.Form["person"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, "", "")
}

func (s *Server) addPerson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	if err := s.engine.AddPerson(r.Context(), r.FormValue("name")); err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, "", "")
}

// removePerson treats the confirm=yes form field as the user's answer to
// the confirmation prompt shown by the page.
func (s *Server) removePerson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	confirmed := r.FormValue("confirm") == "yes"
	_, err := s.engine.RemovePerson(r.Context(), r.FormValue("name"), func(string) bool { return confirmed })
	if err != nil {
		s.fail(w, r, err)
		return
	}
	redirect(w, r, "", "")
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err == nil {
		s.engine.DeleteTransaction(r.Context(), index)
	}
	redirect(w, r, "", "")
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.engine.Undo(r.Context())
	redirect(w, r, "", "")
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	s.engine.Redo(r.Context())
	redirect(w, r, "", "")
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.engine.Reset(r.Context())
	redirect(w, r, "", "")
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if msg, ok := ledger.IsValidation(err); ok {
		redirect(w, r, "error", msg)
		return
	}
	attrs := []any{"error", err, "path", r.URL.Path}
	if id, ok := middleware.RequestID(r); ok {
		attrs = append(attrs, "request_id", id)
	}
	slog.Error("ledger operation failed", attrs...)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func redirect(w http.ResponseWriter, r *http.Request, key, msg string) {
	target := "/"
	if key != "" {
		target += "?" + url.Values{key: {msg}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
