package rediskey

import "fmt"

// DonationGuard 捐赠提交防重 key（按客户端幂等键）
func DonationGuard(prefix, idempotencyKey string) string {
	return fmt.Sprintf("%s:donation:guard:%s", prefix, idempotencyKey)
}

// WebhookSeen 已处理完成的回调通知 id
func WebhookSeen(prefix, rail, eventID string) string {
	return fmt.Sprintf("%s:webhook:seen:%s:%s", prefix, rail, eventID)
}

// ProcessorRate 处理方成功率（0~100）
func ProcessorRate(prefix, name string) string {
	return fmt.Sprintf("%s:processor:rate:%s", prefix, name)
}

// ProcessorDegraded 处理方成功率过低被降级时设置
func ProcessorDegraded(prefix, name string) string {
	return fmt.Sprintf("%s:processor:degraded:%s", prefix, name)
}

// 配置表数据 redis key（hash）
func SysConfig(prefix string) string {
	return prefix + ":sys:config"
}
