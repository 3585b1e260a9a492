package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/khanhnv2901/sitecheck/internal/domain/check"
	consts "github.com/khanhnv2901/sitecheck/internal/shared/constants"
)

//go:embed templates/*.html
var templateFS embed.FS

const emptyURLMessage = "Please enter a valid URL"

// pageData feeds the security check template.
type pageData struct {
	URL      string
	Secure   bool
	Message  string
	Findings []check.Finding
}

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() *pageRenderer {
	return &pageRenderer{
		tmpl: template.Must(template.ParseFS(templateFS, "templates/security_check.html")),
	}
}

func (p *pageRenderer) render(w http.ResponseWriter, data pageData) error {
	// Render into a buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "security_check.html", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, pageData{})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, consts.MaxRequestBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errors.New("invalid form submission"))
		return
	}

	raw := strings.TrimSpace(r.PostForm.Get("url"))
	if raw == "" {
		s.renderPage(w, r, pageData{Message: emptyURLMessage})
		return
	}
	if s.cfg.Scans == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("scan service not available"))
		return
	}

	result := s.cfg.Scans.Scan(r.Context(), raw)
	s.renderPage(w, r, pageData{
		URL:      raw,
		Secure:   result.Secure(),
		Message:  result.Summary(),
		Findings: result.Findings(),
	})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, data pageData) {
	if err := s.pages.render(w, data); err != nil {
		s.requestLogger(r).Error("render_failed", zap.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, err)
	}
}
