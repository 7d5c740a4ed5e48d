package mq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"donation-settle-api/internal/config"
	"donation-settle-api/internal/dal"
)

var errNoChannel = errors.New("rabbitmq channel not available")

type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends JSON events to the settlement topic exchange, routed by topic.
type Publisher struct {
	exchange string
	channel  func() amqpChannel
}

func NewPublisher() *Publisher {
	return &Publisher{
		exchange: config.C.RabbitMQ.Exchange,
		channel: func() amqpChannel {
			if ch := dal.GetChannel(); ch != nil {
				return ch
			}
			return nil
		},
	}
}

func (p *Publisher) Publish(topic string, msg any) error {
	ch := p.channel()
	if ch == nil {
		return errNoChannel
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}
	err = ch.Publish(p.exchange, topic, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         b,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
