// Package kafkax holds the small shared pieces of our Kafka usage:
// broker parsing, the readiness probe, and message header helpers.
package kafkax

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/openmeet/openmeet/libs/runtime"
)

// EventMeta is the canonical metadata carried on outbox Kafka messages.
type EventMeta struct {
	EventID   string
	EventType string
}

func ExtractEventMeta(msg kafka.Message) EventMeta {
	eventID := HeaderValue(msg.Headers, "event_id")
	eventType := HeaderValue(msg.Headers, "event_type")
	if eventID == "" {
		eventID = string(msg.Key)
	}
	if eventType == "" {
		eventType = msg.Topic
	}
	return EventMeta{EventID: eventID, EventType: eventType}
}

// HeaderValue returns the value of the named message header, or "".
func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// SplitBrokers parses a comma-separated broker list from config.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ReadyCheck probes the first broker with a plain dial.
func ReadyCheck(brokers string) runtime.ReadyCheck {
	return runtime.ReadyCheck{
		Name: "kafka",
		Check: func(ctx context.Context) error {
			list := SplitBrokers(brokers)
			if len(list) == 0 {
				return errors.New("kafka brokers not configured")
			}
			dialer := kafka.Dialer{Timeout: 2 * time.Second}
			conn, err := dialer.DialContext(ctx, "tcp", list[0])
			if err != nil {
				return err
			}
			_ = conn.Close()
			return nil
		},
	}
}
