// Package notify publishes reservation events to a RabbitMQ topic exchange.
// Delivery is fire-and-forget: the booking path never waits on, or fails
// because of, a notification.
package notify

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	models "github.com/veligo/charterdesk/internal"
)

type AMQPNotifier struct {
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewAMQPNotifier declares the topic exchange and returns a publisher bound
// to it. Event kinds double as routing keys (reservation.created,
// reservation.deposit_paid).
func NewAMQPNotifier(conn *amqp.Connection, exchange string, logger *zap.Logger) (*AMQPNotifier, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &AMQPNotifier{channel: channel, exchange: exchange, logger: logger}, nil
}

func (n *AMQPNotifier) Publish(_ context.Context, event models.ReservationEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("encoding reservation event",
			zap.String("kind", event.Kind),
			zap.String("reference", event.Reference),
			zap.Error(err))
		return
	}

	err = n.channel.Publish(
		n.exchange,
		event.Kind,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		n.logger.Error("publishing reservation event",
			zap.String("kind", event.Kind),
			zap.String("reference", event.Reference),
			zap.Error(err))
		return
	}

	n.logger.Info("reservation event published",
		zap.String("kind", event.Kind),
		zap.String("reference", event.Reference))
}

func (n *AMQPNotifier) Close() error {
	return n.channel.Close()
}

// NopNotifier drops every event. Used when AMQP is not configured.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, models.ReservationEvent) {}
