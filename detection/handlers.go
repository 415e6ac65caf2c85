package detection

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/pestguard-go/apperror"
	"github.com/user/pestguard-go/auth"
	"github.com/user/pestguard-go/upload"
	"github.com/user/pestguard-go/web"
)

// Handlers exposes the authenticated pages: dashboard, upload form,
// prediction, and history.
type Handlers struct {
	service  *Service
	uploads  *upload.Store
	renderer *web.Renderer
	logger   *zap.Logger
}

// NewHandlers creates the detection Handlers.
func NewHandlers(service *Service, uploads *upload.Store, renderer *web.Renderer, logger *zap.Logger) *Handlers {
	return &Handlers{service: service, uploads: uploads, renderer: renderer, logger: logger}
}

// HandleDashboard renders the dashboard for the session's user.
func (h *Handlers) HandleDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := auth.UsernameFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.renderer.Render(w, "dashboard.html", struct{ Username string }{username})
	}
}

// HandleDetectPage renders the upload form.
func (h *Handlers) HandleDetectPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderer.Render(w, "pest_detect.html", nil)
	}
}

// HandlePredict accepts the leaf image, calls the prediction service,
// records history and renders the result page. Validation failures abort
// before anything is written to disk or the database.
func (h *Handlers) HandlePredict() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := auth.UsernameFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		file, header, err := r.FormFile("leaf_image")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				web.WriteError(w, h.logger, apperror.NewValidationError("No file selected", nil))
				return
			}
			web.WriteError(w, h.logger, apperror.NewValidationError("invalid form submission", err))
			return
		}
		defer file.Close()

		stored, err := h.uploads.Save(file, header)
		if err != nil {
			web.WriteError(w, h.logger, err)
			return
		}

		detection, err := h.service.Detect(r.Context(), username, stored, h.uploads.Path(stored))
		if err != nil {
			web.WriteError(w, h.logger, err)
			return
		}

		h.logger.Info("prediction recorded",
			zap.String("username", username),
			zap.String("pest", detection.Pest),
			zap.Float64("confidence", detection.Confidence))

		h.renderer.Render(w, "result.html", detection)
	}
}

// HandleHistory renders the user's predictions, newest first.
func (h *Handlers) HandleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := auth.UsernameFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		records, err := h.service.History(r.Context(), username)
		if err != nil {
			web.WriteError(w, h.logger, err)
			return
		}

		h.renderer.Render(w, "history.html", struct {
			Username string
			Records  []HistoryRecord
		}{username, records})
	}
}
