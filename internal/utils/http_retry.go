package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent 标记为不可重试的错误，DoWithRetry 直接返回原错误
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// DoWithRetry 最多执行 fn maxRetries 次，每次间隔 interval。
// 成功、遇到 Permanent 错误或 ctx 结束时提前返回
func DoWithRetry(ctx context.Context, maxRetries int, interval time.Duration, fn func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		var p *permanentError
		if errors.As(err, &p) {
			return p.err
		}

		log.Printf("[RETRY] attempt %d/%d failed: %v", attempt, maxRetries, err)
		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context done after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(interval):
		}
	}
	return err
}
