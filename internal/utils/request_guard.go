package utils

import (
	"strconv"
	"time"
)

// ParseUnixSeconds 解析秒级 unix 时间戳
func ParseUnixSeconds(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0), nil
}

// IsTimestampValid 时间戳与当前时间相差不超过 window（前后均可）
func IsTimestampValid(ts, now time.Time, window time.Duration) bool {
	diff := now.Sub(ts)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}
