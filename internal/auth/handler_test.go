package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestSignupLoginRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	h := NewHandler(store.NewMemory())

	rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"name":"Amal","email":"Amal@Example.com","password":"secret1","role":"customer"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}
	var signup SignupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &signup); err != nil || signup.Token == "" {
		t.Fatalf("signup token missing: %v", err)
	}

	// Email is normalized, so a differently-cased login works.
	rec = doJSON(t, h.Login, http.MethodPost, "/auth/login",
		`{"email":"amal@example.com","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h.Login, http.MethodPost, "/auth/login",
		`{"email":"amal@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", rec.Code)
	}
}

func TestSignupRejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	h := NewHandler(store.NewMemory())

	cases := []struct {
		name string
		body string
		want int
	}{
		{"admin role", `{"name":"x","email":"x@y.com","password":"secret1","role":"admin"}`, http.StatusBadRequest},
		{"short password", `{"name":"x","email":"x@y.com","password":"abc","role":"customer"}`, http.StatusBadRequest},
		{"missing name", `{"email":"x@y.com","password":"secret1","role":"customer"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup", tc.body)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	h := NewHandler(store.NewMemory())

	body := `{"name":"Amal","email":"amal@example.com","password":"secret1","role":"craftsman"}`
	if rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup", body); rec.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d", rec.Code)
	}
	if rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup", body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", rec.Code)
	}
}
