package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// The age attestation check runs before any store access, so these
// requests must fail inline without a database configured at all.

func signupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/signup", Signup)
	return r
}

func TestSignupRejectsMissingAgeConfirmation(t *testing.T) {
	r := signupRouter()

	body := `{"email":"a@x.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ageConfirmed")
}

func TestSignupRejectsExplicitFalseAgeConfirmation(t *testing.T) {
	r := signupRouter()

	body := `{"email":"a@x.com","password":"secret1","ageConfirmed":false}`
	req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "18 or older")
}

func TestSignupRejectsBadEmail(t *testing.T) {
	r := signupRouter()

	body := `{"email":"not-an-email","password":"secret1","ageConfirmed":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupRejectsShortPassword(t *testing.T) {
	r := signupRouter()

	body := `{"email":"a@x.com","password":"abc","ageConfirmed":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
