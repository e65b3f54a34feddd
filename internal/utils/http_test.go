package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "real ip header wins",
			headers: map[string]string{"X-Real-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"},
			want:    "203.0.113.7",
		},
		{
			name:    "first hop of forwarded chain",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1, 10.0.0.2"},
			want:    "198.51.100.1",
		},
		{
			name:    "forged header text is not trusted",
			headers: map[string]string{"X-Real-IP": "not-an-address"},
			want:    "192.0.2.1",
		},
		{
			name: "no proxy headers",
			want: "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = "192.0.2.1:4321"
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			if got := ClientIP(c); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
