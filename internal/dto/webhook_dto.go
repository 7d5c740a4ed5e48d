package dto

// WebhookAck is the body returned to a rail after a notification was handled.
type WebhookAck struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}
