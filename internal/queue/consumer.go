package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StartAuditConsumer connects to RabbitMQ, declares the reservation.audit
// queue (durable), and starts consuming messages.  Each message is
// appended to logs/audit.log in a single-line, human-friendly format.
// The function runs a reconnect loop and never returns under normal
// operation; processing errors are logged and the offending message is
// rejected so the server keeps running.
func StartAuditConsumer(url string, logger *zap.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("audit consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, logger); err != nil {
			logger.Warn("audit consumer: consume loop ended", zap.Error(err))
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, logger *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("audit consumer: set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(AuditQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(AuditQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			logger.Warn("audit consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev AuditEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "audit.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	seats := "[]"
	if len(ev.Seats) > 0 {
		seats = fmt.Sprintf("[%s]", strings.Join(ev.Seats, ","))
	}

	line := fmt.Sprintf("[%s] %s | reservation_id=%s | movie=%q | showtime=%q | seats=%s | amount=%.2f | method=%q | reference=%q | detail=%q\n",
		ev.OccurredAt, ev.Kind, ev.Code, ev.Movie, ev.Showtime, seats, ev.Amount, ev.Method, ev.Reference, ev.Detail)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
