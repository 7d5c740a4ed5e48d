package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Alerter 运维告警，实现不能阻塞调用方
type Alerter interface {
	Alert(level, title string, fields map[string]string)
}

// Alert 按标题和排序后的键值行格式化告警并发送
func (t *Telegram) Alert(level, title string, fields map[string]string) {
	t.SendAsync(FormatAlert(level, title, fields, time.Now()))
}

func FormatAlert(level, title string, fields map[string]string, at time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s* %s\n", escapeMarkdown(strings.ToUpper(level)), escapeMarkdown(title)))
	sb.WriteString(fmt.Sprintf("*time:* %s\n", escapeMarkdown(at.UTC().Format("2006-01-02 15:04:05"))))

	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s: `%s`\n", escapeMarkdown(k), escapeMarkdown(fields[k])))
	}
	return sb.String()
}

// escapeMarkdown 转义 Telegram MarkdownV2 特殊字符
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)
	return replacer.Replace(s)
}

// Nop 丢弃告警
type Nop struct{}

func (Nop) Alert(string, string, map[string]string) {}
