package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandlers(t *testing.T) (*Handlers, *fakeRepository, *SessionManager) {
	t.Helper()
	repo := newFakeRepository()
	sessions := newTestSessionManager(time.Hour)
	return NewHandlers(NewService(repo), sessions, zap.NewNop()), repo, sessions
}

func postForm(t *testing.T, handler http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleRegisterSuccessRedirects(t *testing.T) {
	h, repo, _ := newTestHandlers(t)

	rec := postForm(t, h.HandleRegister(), "/register", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"s3cret"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Contains(t, repo.users, "alice")
}

func TestHandleRegisterDuplicateUsername(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	form := url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"s3cret"},
	}
	rec := postForm(t, h.HandleRegister(), "/register", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = postForm(t, h.HandleRegister(), "/register", form)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username already exists", rec.Body.String())
}

func TestHandleRegisterMissingFields(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	rec := postForm(t, h.HandleRegister(), "/register", url.Values{
		"username": {"alice"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLoginSuccessSetsSessionCookie(t *testing.T) {
	h, _, sessions := newTestHandlers(t)
	postForm(t, h.HandleRegister(), "/register", url.Values{
		"username": {"bob"},
		"email":    {"b@b.c"},
		"password": {"hunter2"},
	})

	rec := postForm(t, h.HandleLogin(), "/login", url.Values{
		"username": {"bob"},
		"password": {"hunter2"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	username, err := sessions.Verify(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "bob", username)
}

func TestHandleLoginFailureIsGeneric(t *testing.T) {
	h, _, _ := newTestHandlers(t)
	postForm(t, h.HandleRegister(), "/register", url.Values{
		"username": {"bob"},
		"email":    {"b@b.c"},
		"password": {"hunter2"},
	})

	wrongPassword := postForm(t, h.HandleLogin(), "/login", url.Values{
		"username": {"bob"},
		"password": {"wrong"},
	})
	unknownUser := postForm(t, h.HandleLogin(), "/login", url.Values{
		"username": {"nobody"},
		"password": {"hunter2"},
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, "Invalid Credentials", wrongPassword.Body.String())
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	assert.Empty(t, wrongPassword.Result().Cookies())
}

func TestHandleLogoutClearsCookieAndRedirects(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rec := httptest.NewRecorder()
	h.HandleLogout()(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)

	// Logout without a session behaves the same.
	rec = httptest.NewRecorder()
	h.HandleLogout()(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
