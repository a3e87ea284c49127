package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Empty and whitespace-only sends are rejected before any store
// access: no database is configured here, so reaching the store would
// panic the test.

func messageRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/messages", SendMessage)
	return r
}

func TestSendMessageRejectsEmptyText(t *testing.T) {
	r := messageRouter()

	for _, text := range []string{"", "   ", "\t", "\n  \n"} {
		body := `{"conversationId":"a_b","text":` + quote(text) + `}`
		req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "text %q", text)
	}
}

func TestSendMessageAllowsImageWithoutText(t *testing.T) {
	r := messageRouter()

	// With an image attached the empty-text guard does not apply; the
	// request then fails on the (absent) auth context instead.
	body := `{"conversationId":"a_b","text":"","imageUrl":"https://cdn.example/p.jpg"}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMarkReadRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/conversations/:id/read", MarkRead)

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/a_b/read", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func quote(s string) string {
	replacer := strings.NewReplacer("\t", `\t`, "\n", `\n`)
	return `"` + replacer.Replace(s) + `"`
}
