package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/user/pestguard-go/apperror"
	"github.com/user/pestguard-go/web"
)

// Handlers exposes the auth operations over HTTP form posts.
type Handlers struct {
	service  *Service
	sessions *SessionManager
	logger   *zap.Logger
}

// NewHandlers creates the auth Handlers.
func NewHandlers(service *Service, sessions *SessionManager, logger *zap.Logger) *Handlers {
	return &Handlers{service: service, sessions: sessions, logger: logger}
}

// HandleRegister creates a user from the registration form and redirects to
// the login page. A taken username answers with the plain-text conflict
// message; nothing else is reported as a duplicate.
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			web.WriteError(w, h.logger, apperror.NewValidationError("invalid form submission", err))
			return
		}

		username := r.PostFormValue("username")
		email := r.PostFormValue("email")
		password := r.PostFormValue("password")

		user, err := h.service.Register(r.Context(), username, email, password)
		if err != nil {
			web.WriteError(w, h.logger, err)
			return
		}

		h.logger.Info("user registered", zap.String("username", user.Username))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// HandleLogin authenticates the login form, sets the session cookie and
// redirects to the dashboard.
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			web.WriteError(w, h.logger, apperror.NewValidationError("invalid form submission", err))
			return
		}

		username := r.PostFormValue("username")
		password := r.PostFormValue("password")

		user, err := h.service.Login(r.Context(), username, password)
		if err != nil {
			web.WriteError(w, h.logger, err)
			return
		}

		token, err := h.sessions.Issue(user.Username)
		if err != nil {
			web.WriteError(w, h.logger, apperror.NewInternalError("failed to create session", err))
			return
		}
		h.sessions.SetCookie(w, token)

		h.logger.Info("user logged in", zap.String("username", user.Username))
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

// HandleLogout clears the session cookie and redirects to the login page.
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.sessions.ClearCookie(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
