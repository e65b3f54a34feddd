package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// proxyHeaders in trust order. X-Real-IP is set by our own reverse proxy;
// X-Forwarded-For may carry a comma-joined chain where only the first hop
// is the client.
var proxyHeaders = []string{"X-Real-IP", "X-Forwarded-For"}

// ClientIP resolves the caller's address for check-in metadata and the
// webhook/login audit rows. Header values are parsed before they are
// trusted so a forged header cannot inject arbitrary text into audit logs.
func ClientIP(c *gin.Context) string {
	for _, header := range proxyHeaders {
		value := c.GetHeader(header)
		if value == "" {
			continue
		}
		candidate := strings.TrimSpace(strings.SplitN(value, ",", 2)[0])
		if net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	return c.ClientIP()
}
