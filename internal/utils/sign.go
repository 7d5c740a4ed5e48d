package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HmacSHA256Hex 计算 payload 的 HMAC-SHA256，返回小写十六进制
func HmacSHA256Hex(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHmacHex 常量时间比较收到的十六进制签名与期望签名
func VerifyHmacHex(secret string, payload []byte, received string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(received))
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(got, mac.Sum(nil))
}
