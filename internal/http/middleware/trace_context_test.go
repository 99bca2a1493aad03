package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAttachTraceContextEchoesSaneRequestIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/api/cart", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		name   string
		header string
		echo   bool
	}{
		{name: "plain", header: "checkout-42", echo: true},
		{name: "too long", header: strings.Repeat("a", maxClientIDLen+1)},
		{name: "control chars", header: "abc\x01def"},
		{name: "spaces inside", header: "a b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			req.Header.Set(headerRequestID, tc.header)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get(headerRequestID)
			if got == "" {
				t.Fatalf("missing request id")
			}
			if (got == tc.header) != tc.echo {
				t.Fatalf("unexpected request id: got=%q header=%q", got, tc.header)
			}
		})
	}
}

func TestStreamRoutesSkipLatency(t *testing.T) {
	if !isStreamRoute("/api/cart/events") {
		t.Fatalf("cart events should be treated as a stream")
	}
	if isStreamRoute("/api/cart/items") {
		t.Fatalf("cart items is not a stream")
	}
}
