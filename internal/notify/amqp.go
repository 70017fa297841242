package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange fired notifications are published to.
const ExchangeName = "habitd.notifications"

// AMQPDeliverer forwards deliveries to a broker for an external push service.
type AMQPDeliverer struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *log.Logger
	mu       sync.Mutex
}

func DialAMQP(url string, logger *log.Logger) (*AMQPDeliverer, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("notification broker connected", "exchange", ExchangeName)

	return &AMQPDeliverer{
		conn:     conn,
		channel:  ch,
		exchange: ExchangeName,
		logger:   logger,
	}, nil
}

func (d *AMQPDeliverer) Deliver(ctx context.Context, n Delivery) error {
	payload, err := encodeDelivery(n)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	err = d.channel.PublishWithContext(ctx,
		d.exchange,
		routingKey(n),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    string(n.Handle),
			Timestamp:    n.FiredAt,
			Body:         payload,
		},
	)
	if err != nil {
		d.logger.Error("publish notification failed", "handle", n.Handle, "error", err)
		return err
	}
	d.logger.Debug("notification published", "handle", n.Handle, "size", len(payload))
	return nil
}

func (d *AMQPDeliverer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.channel != nil {
		if err := d.channel.Close(); err != nil {
			d.logger.Warn("error closing channel", "error", err)
		}
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

func routingKey(n Delivery) string {
	channel := n.Channel
	if channel == "" {
		channel = DefaultChannelID
	}
	return "notification." + channel
}

func encodeDelivery(n Delivery) ([]byte, error) {
	if n.FiredAt.IsZero() {
		n.FiredAt = time.Now().UTC()
	}
	return json.Marshal(n)
}
