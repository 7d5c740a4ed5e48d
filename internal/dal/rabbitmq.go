package dal

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"donation-settle-api/internal/config"
)

var (
	mqConn    *amqp.Connection
	mqChannel *amqp.Channel

	mu sync.Mutex

	// closed state comes from NotifyClose, amqp has no IsClosed on channels
	connClosedCh chan *amqp.Error
	chClosedCh   chan *amqp.Error

	reconnecting bool
)

// InitRabbitMQ 连接 MQ 并声明结算交换机
func InitRabbitMQ() error {
	return connect()
}

func connect() error {
	mu.Lock()
	defer mu.Unlock()

	if isConnAlive() && isChanAlive() {
		return nil
	}

	conn, err := amqp.Dial(config.C.RabbitMQ.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	mqConn = conn
	connClosedCh = conn.NotifyClose(make(chan *amqp.Error, 1))

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		mqConn = nil
		connClosedCh = nil
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(config.C.RabbitMQ.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		mqConn = nil
		connClosedCh = nil
		return fmt.Errorf("exchange declare: %w", err)
	}
	mqChannel = ch
	chClosedCh = ch.NotifyClose(make(chan *amqp.Error, 1))

	log.Printf("[RabbitMQ] connected, exchange=%s", config.C.RabbitMQ.Exchange)

	go watchClose()
	return nil
}

func watchClose() {
	for {
		select {
		case err, ok := <-connClosedCh:
			if ok {
				log.Printf("[RabbitMQ] connection closed: %v", err)
				reconnect()
				return
			}
		case err, ok := <-chClosedCh:
			if ok {
				log.Printf("[RabbitMQ] channel closed: %v", err)
				reconnect()
				return
			}
		}
	}
}

// reconnect 阻塞直到重新连上 MQ
func reconnect() {
	mu.Lock()
	if reconnecting {
		mu.Unlock()
		return
	}
	reconnecting = true
	mu.Unlock()

	defer func() {
		mu.Lock()
		reconnecting = false
		mu.Unlock()
	}()

	for {
		if err := connect(); err == nil {
			log.Println("[RabbitMQ] reconnected")
			return
		}
		time.Sleep(5 * time.Second)
	}
}

func isConnAlive() bool {
	if mqConn == nil || connClosedCh == nil {
		return false
	}
	select {
	case <-connClosedCh:
		return false
	default:
		return true
	}
}

func isChanAlive() bool {
	if mqChannel == nil || chClosedCh == nil {
		return false
	}
	select {
	case <-chClosedCh:
		return false
	default:
		return true
	}
}

// GetChannel 返回可用 channel，从未连上时返回 nil
func GetChannel() *amqp.Channel {
	mu.Lock()
	ch := mqChannel
	mu.Unlock()
	if ch == nil {
		return nil
	}
	if !isChanAlive() {
		go reconnect()
		return nil
	}
	return ch
}
