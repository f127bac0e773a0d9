package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"baryabazaar-api/internal/config"
)

// Alert event types consumed by the external notification delivery service.
const (
	AlertLargeTransaction = "large_transaction"
	AlertLowBalance       = "balance_below_threshold"
	AlertSystemError      = "system_error"
)

// AlertEvent is the payload published for each alert. Delivery (push,
// email, webhook) is handled downstream.
type AlertEvent struct {
	EventID   string                 `json:"event_id"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// AlertPublisher publishes ledger alert events to a RabbitMQ topic exchange.
type AlertPublisher interface {
	PublishLargeTransaction(ctx context.Context, transactionID, userName string, phpAmount decimal.Decimal) error
	PublishLowBalance(ctx context.Context, platform string, usdt, threshold decimal.Decimal) error
	PublishSystemError(ctx context.Context, component, message string) error
	Close() error
}

type alertPublisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
}

// NewAlertPublisher connects to RabbitMQ with exponential-backoff retries
// and declares the alert exchange.
func NewAlertPublisher(cfg config.RabbitMQConfig) (AlertPublisher, error) {
	conn, err := connectWithRetry(cfg.URL, cfg.RetryAttempts, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &alertPublisher{
		connection: conn,
		channel:    ch,
		exchange:   cfg.Exchange,
	}, nil
}

func connectWithRetry(url string, maxRetries int, baseDelay time.Duration) (*amqp.Connection, error) {
	for i := 0; i < maxRetries; i++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		if i < maxRetries-1 {
			wait := baseDelay * time.Duration(1<<uint(i))
			logrus.WithFields(logrus.Fields{
				"attempt": i + 1,
				"max":     maxRetries,
				"wait":    wait,
			}).Warn("Failed to connect to RabbitMQ, retrying")
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d retries", maxRetries)
}

func (p *alertPublisher) PublishLargeTransaction(ctx context.Context, transactionID, userName string, phpAmount decimal.Decimal) error {
	return p.publish(ctx, "ledger.alert.large_transaction", &AlertEvent{
		EventID: fmt.Sprintf("large_tx_%s", transactionID),
		Type:    AlertLargeTransaction,
		Message: fmt.Sprintf("Large transaction of %s PHP recorded by %s", phpAmount.String(), userName),
		Context: map[string]interface{}{
			"transaction_id": transactionID,
			"user_name":      userName,
			"php_amount":     phpAmount.String(),
		},
		Timestamp: time.Now(),
	})
}

func (p *alertPublisher) PublishLowBalance(ctx context.Context, platform string, usdt, threshold decimal.Decimal) error {
	return p.publish(ctx, "ledger.alert.low_balance", &AlertEvent{
		EventID: fmt.Sprintf("low_balance_%s_%d", platform, time.Now().Unix()),
		Type:    AlertLowBalance,
		Message: fmt.Sprintf("Platform %s balance %s USDT is below the %s USDT threshold", platform, usdt.String(), threshold.String()),
		Context: map[string]interface{}{
			"platform":  platform,
			"usdt":      usdt.String(),
			"threshold": threshold.String(),
		},
		Timestamp: time.Now(),
	})
}

func (p *alertPublisher) PublishSystemError(ctx context.Context, component, message string) error {
	return p.publish(ctx, "ledger.alert.system_error", &AlertEvent{
		EventID: fmt.Sprintf("system_error_%d", time.Now().UnixNano()),
		Type:    AlertSystemError,
		Message: message,
		Context: map[string]interface{}{
			"component": component,
		},
		Timestamp: time.Now(),
	})
}

func (p *alertPublisher) publish(ctx context.Context, routingKey string, event *AlertEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish alert event: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id":    event.EventID,
		"event_type":  event.Type,
		"routing_key": routingKey,
	}).Debug("Published alert event")

	return nil
}

func (p *alertPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.connection != nil {
		return p.connection.Close()
	}
	return nil
}
