package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFormatAlert(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got := FormatAlert("error", "webhook signature rejected", map[string]string{
		"rail":  "bank",
		"ip":    "10.0.0.1",
		"empty": "",
	}, at)
	want := "*ERROR* webhook signature rejected\n" +
		"*time:* 2026\\-03\\-01 12:00:00\n" +
		"ip: `10\\.0\\.0\\.1`\n" +
		"rail: `bank`\n"
	if got != want {
		t.Errorf("FormatAlert =\n%s\nwant\n%s", got, want)
	}
}

func TestTelegram_SendMessage(t *testing.T) {
	var got TelegramMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/botTOKEN/sendMessage") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram("TOKEN", "-100", nil)
	tg.baseURL = srv.URL
	if err := tg.SendMessage(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	if got.ChatID != "-100" || got.Text != "hi" {
		t.Errorf("message = %+v", got)
	}
}

func TestTelegram_DisabledWithoutConfig(t *testing.T) {
	tg := NewTelegram("", "", nil)
	if tg.Enabled() {
		t.Error("enabled without token")
	}
	if err := tg.SendMessage(context.Background(), "x"); err == nil {
		t.Error("expected error")
	}
}
