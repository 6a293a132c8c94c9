package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ReelApp/internal/config"
	"github.com/GoArmGo/ReelApp/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client представляет собой клиент RabbitMQ
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient создает и инициализирует новый клиент RabbitMQ
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Идемпотентно: очередь создаётся, если её ещё нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	logger.Info("rabbitmq queue declared", "queue", q.Name, "messages", q.Messages)

	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает соединение и канал RabbitMQ
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing rabbitmq channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("error closing rabbitmq connection: %w", err)
		}
	}
	return nil
}

// PublishVideoCreated публикует событие о новом видео.
func (c *Client) PublishVideoCreated(ctx context.Context, payload payloads.VideoCreatedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	c.logger.Debug("video.created published", "queue", c.queue.Name, "video_id", payload.VideoID)
	return nil
}

// StartConsumingVideoCreated начинает потребление сообщений из очереди.
// Сообщения обрабатываются последовательно в одной горутине.
func (c *Client) StartConsumingVideoCreated(ctx context.Context, handler func(context.Context, payloads.VideoCreatedPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack (подтверждаем вручную)
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go c.consume(ctx, msgs, handler)
	return nil
}

func (c *Client) consume(ctx context.Context, msgs <-chan amqp.Delivery, handler func(context.Context, payloads.VideoCreatedPayload) error) {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Info("rabbitmq delivery channel closed, stopping consumer")
				return
			}
			c.handleDelivery(ctx, msg, handler)
		case <-ctx.Done():
			c.logger.Info("context cancelled, stopping rabbitmq consumer")
			return
		}
	}
}

// acknowledger: часть amqp.Delivery, нужная для подтверждения; выделена для тестов.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.VideoCreatedPayload) error) {
	dispatch(ctx, c.logger, msg.Body, msg, handler)
}

// dispatch разбирает сообщение и подтверждает его по результату обработки.
// Битые сообщения отбрасываются без повторной постановки, ошибки обработки возвращают сообщение в очередь.
func dispatch(ctx context.Context, logger *slog.Logger, body []byte, ack acknowledger, handler func(context.Context, payloads.VideoCreatedPayload) error) {
	var payload payloads.VideoCreatedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warn("dropping malformed message", "error", err, "body", string(body))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("error nacking malformed message", "error", err)
		}
		return
	}

	if err := handler(ctx, payload); err != nil {
		logger.Error("error processing message", "video_id", payload.VideoID, "error", err)
		if err := ack.Nack(false, true); err != nil {
			logger.Error("error nacking message", "error", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Error("error acking message", "error", err)
	}
}
