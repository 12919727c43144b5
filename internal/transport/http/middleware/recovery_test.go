package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/account-service/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

func TestRecovery_PanicReturns500(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery(testLogger))
	r.GET("/boom", func(_ *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := errorOf(t, w); got != "Internal server error" {
		t.Errorf("error = %q", got)
	}
}
