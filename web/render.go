// Package web holds the embedded HTML templates, the render helper and the
// plain-text error writer shared by all handlers. Pages are deliberately
// minimal; the interesting behavior lives in the services.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/pestguard-go/apperror"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl   *template.Template
	logger *zap.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, apperror.NewInternalError("failed to parse templates", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// Render writes the named template with data as an HTML response.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		// Headers are already out; the most we can do is log.
		r.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
	}
}

// HandleLoginPage renders the login form.
func (r *Renderer) HandleLoginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r.Render(w, "index.html", nil)
	}
}

// HandleRegisterPage renders the registration form.
func (r *Renderer) HandleRegisterPage() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r.Render(w, "register.html", nil)
	}
}

// WriteError reports err to the client as plain text with the status code
// of its error type. Only the classified message is sent; the wrapped
// internal detail goes to the log.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}

	if appErr.StatusCode() >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(appErr))
	} else {
		logger.Warn("request rejected", zap.String("reason", appErr.Message))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(appErr.StatusCode())
	_, _ = w.Write([]byte(appErr.Message))
}
