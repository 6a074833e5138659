package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// amqpDispatcher publishes envelopes to a durable RabbitMQ queue. The
// consumer on the far side owns actual push/socket delivery.
type amqpDispatcher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  zerolog.Logger
}

// NewAMQPDispatcher connects to RabbitMQ and declares the notification queue.
func NewAMQPDispatcher(url, queue string, logger zerolog.Logger) (Dispatcher, error) {
	logger = logger.With().Str("component", "amqp-dispatcher").Logger()

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare queue (idempotent)
	_, err = channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logger.Info().Str("queue", queue).Msg("AMQP dispatcher initialised")

	return &amqpDispatcher{
		conn:    conn,
		channel: channel,
		queue:   queue,
		logger:  logger,
	}, nil
}

// Dispatch publishes the envelope as a persistent JSON message.
func (d *amqpDispatcher) Dispatch(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal notification envelope: %w", err)
	}

	err = d.channel.PublishWithContext(ctx,
		"",      // default exchange
		d.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("recipient_id", env.RecipientUserID.String()).
			Msg("failed to publish notification")
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	d.logger.Debug().
		Str("recipient_id", env.RecipientUserID.String()).
		Str("title", env.Notification.Title).
		Msg("notification published")

	return nil
}

// Close releases the channel and connection.
func (d *amqpDispatcher) Close() error {
	if d.channel != nil {
		d.channel.Close()
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}
