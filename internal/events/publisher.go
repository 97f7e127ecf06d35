// Package events publishes booking events to Kafka. Publishing is
// best-effort: a broker outage never fails the booking that triggered it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/autocarehq/autocare/internal/model"
)

const TopicAppointmentBooked = "appointments.booked.v1"

type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher returns nil when no brokers are configured; a nil publisher is
// safe to call and does nothing.
func NewPublisher(brokers string, logger *slog.Logger) *Publisher {
	list := SplitBrokers(brokers)
	if len(list) == 0 {
		logger.Info("event publishing disabled (no kafka brokers configured)")
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(list...),
			Topic:                  TopicAppointmentBooked,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// AppointmentBooked emits the booked event. Callers typically run this in a
// goroutine after responding; failures are logged only.
func (p *Publisher) AppointmentBooked(ctx context.Context, appt *model.Appointment) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(appt)
	if err != nil {
		p.logger.Error("marshal booked event", "err", err, "appointment_id", appt.ID)
		return
	}

	msg := kafka.Message{
		Key:   []byte(appt.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(TopicAppointmentBooked)},
		},
	}
	msg.Headers = injectTraceHeaders(ctx, msg.Headers)

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.logger.Error("publish booked event", "err", err, "appointment_id", appt.ID)
		return
	}
	p.logger.Debug("booked event published", "appointment_id", appt.ID)
}

func (p *Publisher) Close() {
	if p != nil && p.writer != nil {
		_ = p.writer.Close()
	}
}

// ReadyCheck dials the first broker.
func ReadyCheck(brokers string) func(context.Context) error {
	return func(ctx context.Context) error {
		list := SplitBrokers(brokers)
		if len(list) == 0 {
			return nil
		}
		dialer := kafka.Dialer{Timeout: 2 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", list[0])
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// injectTraceHeaders appends W3C trace context so consumers can join the
// booking trace.
func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}
