package auth

import "net/http"

// RequireSession gates a route group behind a valid session cookie. A
// request without one is redirected to the login page rather than answered
// with an error; protected content is never written for anonymous
// requests. On success the username travels in the request context.
func RequireSession(sessions *SessionManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			username, err := sessions.Verify(cookie.Value)
			if err != nil {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithUsername(r.Context(), username)))
		})
	}
}
