package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/notify"
	"donation-settle-api/internal/settlement"
	"donation-settle-api/internal/utils"
)

// CaptureResult is the processor's acknowledgement of a capture request.
type CaptureResult struct {
	PaymentRef   string
	Status       string
	ClientSecret string
}

type CaptureClient interface {
	Capture(ctx context.Context, idempotencyKey string, req *settlement.CaptureRequest) (*CaptureResult, error)
}

type ProcessorOptions struct {
	URL           string
	APIKey        string
	Timeout       time.Duration
	RetryTimes    int
	RetryInterval time.Duration
}

// ProcessorHealth is the shared success-rate tracker of the processor.
type ProcessorHealth interface {
	Record(ctx context.Context, name string, success bool) (tripped bool, err error)
	Degraded(ctx context.Context, name string) (bool, error)
}

const processorName = "card"

// ProcessorClient makes the single outbound capture call for a donation.
type ProcessorClient struct {
	opts   ProcessorOptions
	client *http.Client
	health ProcessorHealth
	alert  notify.Alerter
	log    *logrus.Logger
}

func NewProcessorClient(opts ProcessorOptions, alert notify.Alerter, log *logrus.Logger) *ProcessorClient {
	return &ProcessorClient{opts: opts, client: &http.Client{}, alert: alert, log: log}
}

// WithHealth makes the client skip captures while the processor is marked degraded.
func (c *ProcessorClient) WithHealth(h ProcessorHealth) *ProcessorClient {
	c.health = h
	return c
}

type processorResp struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret"`
	Error        *struct {
		Type    string            `json:"type"`
		Message utils.FlexibleMsg `json:"message"`
	} `json:"error"`
}

// Capture posts req once per attempt with the same Idempotency-Key, so a retried
// request can never create a second charge. Only network failures and 5xx/429
// replies are retried.
func (c *ProcessorClient) Capture(ctx context.Context, idempotencyKey string, req *settlement.CaptureRequest) (*CaptureResult, error) {
	fields := logrus.Fields{"idempotency_key": idempotencyKey, "amount": req.Amount, "destination": req.DestinationAccount, "legs": len(req.Legs())}
	if c.degraded(ctx) {
		c.log.WithFields(fields).Warn("processor degraded, capture skipped")
		return nil, constant.ErrProcessor.WithMessage("payment processor temporarily unavailable")
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	headers := map[string]string{
		"Authorization":   "Bearer " + c.opts.APIKey,
		"Idempotency-Key": idempotencyKey,
	}
	var body []byte
	err := utils.DoWithRetry(ctxTimeout, c.opts.RetryTimes, c.opts.RetryInterval, func() error {
		b, err := utils.HttpPostJsonWithContext(ctxTimeout, c.client, c.opts.URL, headers, req)
		var se *utils.StatusError
		if errors.As(err, &se) && !se.Temporary() {
			body = b
			return utils.Permanent(err)
		}
		if err != nil {
			return err
		}
		body = b
		return nil
	})

	var se *utils.StatusError
	rejected := errors.As(err, &se) && !se.Temporary()
	c.recordHealth(ctx, err == nil || rejected)
	if err != nil {
		if rejected {
			msg := rejectMessage(body)
			c.log.WithFields(fields).WithField("status", se.StatusCode).Warn("processor rejected capture: " + msg)
			return nil, constant.Newf(constant.CodeProcessorRejected, "payment processor rejected the request: %s", msg)
		}
		c.log.WithFields(fields).WithError(err).Error("processor capture failed after retries")
		c.alert.Alert("error", "processor capture failed", map[string]string{
			"idempotency_key": idempotencyKey,
			"amount":          strconv.FormatInt(req.Amount, 10),
			"retries":         strconv.Itoa(c.opts.RetryTimes),
			"error":           err.Error(),
		})
		return nil, constant.ErrProcessor
	}

	var resp processorResp
	if err := json.Unmarshal(body, &resp); err != nil || resp.ID == "" {
		c.log.WithFields(fields).WithField("body", string(body)).Error("processor reply unreadable")
		return nil, constant.ErrProcessor.WithMessage("payment processor returned an unreadable reply")
	}
	c.log.WithFields(fields).WithField("payment_ref", resp.ID).Info("processor accepted capture")
	return &CaptureResult{PaymentRef: resp.ID, Status: resp.Status, ClientSecret: resp.ClientSecret}, nil
}

func (c *ProcessorClient) degraded(ctx context.Context) bool {
	if c.health == nil {
		return false
	}
	degraded, err := c.health.Degraded(ctx, processorName)
	if err != nil {
		c.log.WithError(err).Warn("processor health unavailable")
		return false
	}
	return degraded
}

// recordHealth counts a 4xx reply as healthy; the processor answered.
func (c *ProcessorClient) recordHealth(ctx context.Context, ok bool) {
	if c.health == nil {
		return
	}
	tripped, err := c.health.Record(ctx, processorName, ok)
	if err != nil {
		c.log.WithError(err).Warn("record processor health failed")
		return
	}
	if tripped {
		c.log.Error("processor marked degraded")
		c.alert.Alert("error", "processor marked degraded", map[string]string{"processor": processorName})
	}
}

func rejectMessage(body []byte) string {
	var resp processorResp
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != nil && resp.Error.Message.Text != "" {
		return resp.Error.Message.Text
	}
	return "request declined"
}
