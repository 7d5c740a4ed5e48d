package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type TelegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
	Parse  string `json:"parse_mode"`
}

// Telegram 通过 bot API 向指定会话发送告警
type Telegram struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	log      *logrus.Logger
}

func NewTelegram(botToken, chatID string, log *logrus.Logger) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{Timeout: 5 * time.Second},
		log:      log,
	}
}

// Enabled token 和 chat 都已配置
func (t *Telegram) Enabled() bool {
	return t != nil && t.botToken != "" && t.chatID != ""
}

func (t *Telegram) SendMessage(ctx context.Context, content string) error {
	if !t.Enabled() {
		return fmt.Errorf("telegram alerts not configured")
	}
	body, _ := json.Marshal(TelegramMessage{ChatID: t.chatID, Text: content, Parse: "MarkdownV2"})
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram status %d", resp.StatusCode)
	}
	return nil
}

// SendAsync 异步发送，失败只记日志
func (t *Telegram) SendAsync(content string) {
	if !t.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := t.SendMessage(ctx, content); err != nil && t.log != nil {
			t.log.WithError(err).Warn("telegram alert failed")
		}
	}()
}
