package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher is the event sink the booking lifecycle talks to.  Callers
// treat publishing as best-effort: errors are logged and returned so the
// main request flow can ignore them without interruption.
type Publisher interface {
	PublishAudit(ctx context.Context, event AuditEvent) error
	PublishRefund(ctx context.Context, event RefundEvent) error
}

// AMQPPublisher publishes events to RabbitMQ.  A fresh connection is
// dialed per publish; event volume here is a handful per reservation, so
// connection churn is not a concern and a broken broker never wedges a
// long-lived channel.
type AMQPPublisher struct {
	url    string
	logger *zap.Logger
}

// NewAMQPPublisher returns a publisher targeting the given broker URL.
func NewAMQPPublisher(url string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

// PublishAudit sends an audit event to the reservation.audit queue.
func (p *AMQPPublisher) PublishAudit(ctx context.Context, event AuditEvent) error {
	return p.publish(ctx, AuditQueue, event)
}

// PublishRefund sends a refund notice to the refund.requested queue.
func (p *AMQPPublisher) PublishRefund(ctx context.Context, event RefundEvent) error {
	return p.publish(ctx, RefundQueue, event)
}

// publish marshals the event and delivers it to the named queue via the
// default exchange.  The queue is declared durable and messages are
// marked persistent so they survive broker restarts.
func (p *AMQPPublisher) publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		p.logger.Warn("rabbitmq queue declare failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		p.logger.Warn("rabbitmq publish failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	return nil
}

// NopPublisher drops every event.  Used in tests and when no broker is
// configured.
type NopPublisher struct{}

func (NopPublisher) PublishAudit(context.Context, AuditEvent) error   { return nil }
func (NopPublisher) PublishRefund(context.Context, RefundEvent) error { return nil }
