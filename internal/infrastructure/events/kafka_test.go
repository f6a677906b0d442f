package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaPublisherWritesKeyedJSON(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w)

	ev := domain.RideEvent{Type: domain.EventRideCreated, RideID: 12, RequesterID: "42", SlotTime: "07:15", Purpose: domain.PurposeClass}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d", len(w.msgs))
	}
	m := w.msgs[0]
	if string(m.Key) != "12" {
		t.Errorf("key = %q", m.Key)
	}
	if header(m, "event_type") != "ride_created" || header(m, "event_id") == "" {
		t.Errorf("headers = %v", m.Headers)
	}
	var got domain.RideEvent
	if err := json.Unmarshal(m.Value, &got); err != nil {
		t.Fatal(err)
	}
	if got.RideID != 12 || got.SlotTime != "07:15" || got.Purpose != domain.PurposeClass {
		t.Errorf("payload = %+v", got)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("close: %v closed=%v", err, w.closed)
	}
}

func TestKafkaPublisherWrapsWriteErrors(t *testing.T) {
	broker := errors.New("leader not available")
	p := NewKafkaPublisherWithWriter(&fakeWriter{err: broker})
	if err := p.Publish(context.Background(), domain.RideEvent{Type: domain.EventStoreReset}); !errors.Is(err, broker) {
		t.Errorf("got %v", err)
	}
}
