package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/pkg/apperror"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
)

type stubUsers struct {
	signup    application.SignupInput
	refreshed string
	update    application.UpdateProfileInput
	loggedOut string
	err       error
}

func (s *stubUsers) pair() application.TokenPair {
	now := time.Now()
	return application.TokenPair{
		AccessToken:        "access",
		AccessTokenExpiry:  now.Add(15 * time.Minute),
		RefreshToken:       "refresh",
		RefreshTokenExpiry: now.Add(time.Hour),
	}
}

func (s *stubUsers) Signup(_ context.Context, in application.SignupInput) (*entity.User, error) {
	s.signup = in
	if s.err != nil {
		return nil, s.err
	}
	return &entity.User{ID: "u1", Email: in.Email, UserName: "jane"}, nil
}

func (s *stubUsers) Login(context.Context, string, string) (*entity.User, application.TokenPair, error) {
	if s.err != nil {
		return nil, application.TokenPair{}, s.err
	}
	return &entity.User{ID: "u1", Email: "jane@example.com"}, s.pair(), nil
}

func (s *stubUsers) Refresh(_ context.Context, token string) (application.TokenPair, string, error) {
	s.refreshed = token
	return s.pair(), "u1", s.err
}

func (s *stubUsers) Logout(_ context.Context, userID string) { s.loggedOut = userID }

func (s *stubUsers) GetProfile(_ context.Context, userID string) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.User{ID: userID}, nil
}

func (s *stubUsers) ListUsers(context.Context) ([]entity.User, error) {
	return []entity.User{{ID: "u1"}}, s.err
}

func (s *stubUsers) UpdateProfile(_ context.Context, userID string, in application.UpdateProfileInput) (*entity.User, error) {
	s.update = in
	if s.err != nil {
		return nil, s.err
	}
	return &entity.User{ID: userID, FullName: in.FullName}, nil
}

func (s *stubUsers) UploadAvatar(_ context.Context, userID string, _ io.Reader, _, _ string) (*entity.User, error) {
	return &entity.User{ID: userID, AvatarURL: "https://cdn.example/a.png"}, s.err
}

func (s *stubUsers) DeleteAccount(_ context.Context, userID string) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.User{ID: userID}, nil
}

func userEngine(svc UserUseCase) http.Handler {
	h := NewUserHandler(svc, quietLogger(), "", false, 1<<20)
	r := newEngine()
	r.POST("/api/users/signup", h.Signup)
	r.POST("/api/users/signin", h.Signin)
	r.POST("/api/users/refresh", h.Refresh)
	r.POST("/api/users/logout", h.Logout)
	r.GET("/api/users/me", h.Me)
	r.PUT("/api/users/me", h.Update)
	r.DELETE("/api/users/me", h.Delete)
	return r
}

func cookieValues(w *httptest.ResponseRecorder) map[string]string {
	out := map[string]string{}
	for _, c := range w.Result().Cookies() {
		out[c.Name] = c.Value
	}
	return out
}

func TestSignup(t *testing.T) {
	svc := &stubUsers{}
	r := userEngine(svc)

	body := map[string]string{"email": "jane@example.com", "password": "secret1", "confirmPassword": "secret1"}
	w, env := do(t, r, http.MethodPost, "/api/users/signup", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d %s", w.Code, w.Body.String())
	}
	if svc.signup.ConfirmPassword != "secret1" {
		t.Fatalf("service got %+v", svc.signup)
	}
	var data struct {
		User userResponse `json:"user"`
	}
	decode(t, env.Data, &data)
	if data.User.ID != "u1" || data.User.UserName != "jane" {
		t.Fatalf("user = %+v", data.User)
	}

	w, env = do(t, r, http.MethodPost, "/api/users/signup", map[string]string{"email": "jane", "password": "123"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid signup: %d", w.Code)
	}
	var details map[string]string
	decode(t, env.Error, &details)
	if details["email"] == "" || details["password"] == "" || details["confirmPassword"] == "" {
		t.Fatalf("details = %v", details)
	}
}

func TestSigninSetsCookies(t *testing.T) {
	r := userEngine(&stubUsers{})
	w, env := do(t, r, http.MethodPost, "/api/users/signin", map[string]string{"email": "jane@example.com", "password": "secret1"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	cookies := cookieValues(w)
	if cookies[helpers.AccessCookie] != "access" || cookies[helpers.RefreshCookie] != "refresh" {
		t.Fatalf("cookies = %v", cookies)
	}
	var data map[string]any
	decode(t, env.Data, &data)
	if data["token"] != "access" || data["refreshToken"] != "refresh" {
		t.Fatalf("data = %v", data)
	}

	w, _ = do(t, userEngine(&stubUsers{err: apperror.Validation("Invalid email or password", nil)}), http.MethodPost, "/api/users/signin",
		map[string]string{"email": "jane@example.com", "password": "nope"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad credentials: %d", w.Code)
	}
}

func TestRefresh(t *testing.T) {
	svc := &stubUsers{}
	r := userEngine(svc)

	do(t, r, http.MethodPost, "/api/users/refresh", map[string]string{"refreshToken": "from-body"}, nil)
	if svc.refreshed != "from-body" {
		t.Fatalf("refreshed %q", svc.refreshed)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/users/refresh", nil)
	req.AddCookie(&http.Cookie{Name: helpers.RefreshCookie, Value: "from-cookie"})
	if w, _ := send(t, r, req); w.Code != http.StatusOK || svc.refreshed != "from-cookie" {
		t.Fatalf("cookie refresh: %d %q", w.Code, svc.refreshed)
	}

	if w, _ := do(t, r, http.MethodPost, "/api/users/refresh", nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}
}

func TestUpdateProfileParsesDate(t *testing.T) {
	svc := &stubUsers{}
	r := userEngine(svc)

	w, _ := do(t, r, http.MethodPut, "/api/users/me", map[string]string{"fullName": "Jane D", "dateOfBirth": "1990-04-02"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if svc.update.DateOfBirth == nil || svc.update.DateOfBirth.Year() != 1990 || svc.update.FullName != "Jane D" {
		t.Fatalf("service got %+v", svc.update)
	}

	if w, _ := do(t, r, http.MethodPut, "/api/users/me", map[string]string{"dateOfBirth": "02/04/1990"}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", w.Code)
	}
}

func TestLogoutAndDeleteClearCookies(t *testing.T) {
	svc := &stubUsers{}
	r := userEngine(svc)

	w, _ := do(t, r, http.MethodPost, "/api/users/logout", nil, nil)
	if svc.loggedOut != testUser || len(w.Result().Cookies()) != 2 {
		t.Fatalf("logout: user=%q cookies=%d", svc.loggedOut, len(w.Result().Cookies()))
	}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Fatalf("cookie %s not expired", c.Name)
		}
	}

	if w, _ := do(t, userEngine(&stubUsers{err: apperror.NotFound("User not found")}), http.MethodDelete, "/api/users/me", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: %d", w.Code)
	}
}
