package utils

import "strings"

// LastPathSegment 取 URL 或路径最后一个 "/" 之后的部分
func LastPathSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
