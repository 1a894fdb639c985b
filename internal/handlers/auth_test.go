package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"blogicum/internal/db"
	"blogicum/internal/models"
)

func TestRegisterCreatesUserAndLogsIn(t *testing.T) {
	r := setupApp(t)

	form := url.Values{}
	form.Set("username", "carol")
	form.Set("email", "carol@example.com")
	form.Set("password", "sekret99")

	w := doRequest(r, http.MethodPost, "/signup", form, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/profile/carol" {
		t.Errorf("expected redirect to the new profile, got %q", loc)
	}

	var user models.User
	if err := db.DB.Where("username = ?", "carol").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Password == "sekret99" {
		t.Error("password stored in plain text")
	}

	// The signup response carries a live session.
	cookies := (&http.Response{Header: w.Header()}).Cookies()
	w = doRequest(r, http.MethodGet, "/posts/create", nil, cookies)
	if w.Code != http.StatusOK {
		t.Errorf("fresh session rejected: %d", w.Code)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	r := setupApp(t)

	form := url.Values{}
	form.Set("username", "carol")
	form.Set("email", "carol@example.com")
	form.Set("password", "abc")

	w := doRequest(r, http.MethodPost, "/signup", form, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var count int64
	db.DB.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("user created despite invalid password, %d rows", count)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := setupApp(t)
	createUser(t, "bob")

	form := url.Values{}
	form.Set("username", "bob")
	form.Set("email", "other@example.com")
	form.Set("password", "sekret99")

	w := doRequest(r, http.MethodPost, "/signup", form, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestLoginGrantsAccess(t *testing.T) {
	r := setupApp(t)
	createUser(t, "bob")

	// Before login the protected page redirects.
	w := doRequest(r, http.MethodGet, "/posts/create", nil, nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("expected anonymous redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	cookies := login(t, r, "bob")
	w = doRequest(r, http.MethodGet, "/posts/create", nil, cookies)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 after login, got %d", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r := setupApp(t)
	createUser(t, "bob")

	form := url.Values{}
	form.Set("username", "bob")
	form.Set("password", "not-it")

	w := doRequest(r, http.MethodPost, "/login", form, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	r := setupApp(t)
	createUser(t, "bob")
	cookies := login(t, r, "bob")

	w := doRequest(r, http.MethodGet, "/logout", nil, cookies)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}

	// The logout response rewrites the cookie; the protected page must
	// reject it.
	cleared := (&http.Response{Header: w.Header()}).Cookies()
	w = doRequest(r, http.MethodGet, "/posts/create", nil, cleared)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("session survived logout: %d %q", w.Code, w.Header().Get("Location"))
	}
}
