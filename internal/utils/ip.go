package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetRealClientIP 获取客户端真实 IP，优先取代理头，最后兜底 RemoteAddr
func GetRealClientIP(c *gin.Context) string {
	ipHeaders := []string{
		"CF-Connecting-IP",
		"X-Real-IP",
		"X-Forwarded-For", // 多层代理，逗号分隔
		"X-Client-IP",
	}

	for _, header := range ipHeaders {
		ipList := c.Request.Header.Get(header)
		if ipList == "" {
			continue
		}
		for _, ip := range strings.Split(ipList, ",") {
			ip = strings.TrimSpace(ip)
			if ip != "" && isValidIP(ip) {
				return ip
			}
		}
	}

	ip, _, err := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
	if err == nil && isValidIP(ip) {
		return ip
	}
	return c.ClientIP()
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
