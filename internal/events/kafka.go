package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher buffers envelopes in an inbox channel and writes them from
// a single goroutine, so publishing never blocks a request on the broker.
type KafkaPublisher struct {
	w        *kafka.Writer
	inbox    chan kafka.Message
	closeCh  chan struct{}
	producer string
	log      zerolog.Logger
}

func NewKafkaPublisher(brokers []string, topic, producer string, buf int, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:    make(chan kafka.Message, buf),
		closeCh:  make(chan struct{}),
		producer: producer,
		log:      log.With().Str("component", "events").Logger(),
	}
}

// Start runs the writer loop until ctx is cancelled, then flushes whatever
// is already enqueued before closing the writer. The inbox is never closed:
// request handlers still draining during server shutdown may publish
// concurrently, and a send on a closed channel would panic mid-request.
func (p *KafkaPublisher) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				_ = p.w.Close()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

// drain writes out the messages buffered at shutdown time. Anything enqueued
// after it returns is dropped by the closeCh check in Publish.
func (p *KafkaPublisher) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

// Publish enqueues the event, dropping it if the publisher has stopped or
// the inbox is full. Event loss only costs downstream consumers a
// notification.
func (p *KafkaPublisher) Publish(_ context.Context, eventType, key string, payload any) {
	env, err := newEnvelope(eventType, p.producer, payload)
	if err != nil {
		p.log.Error().Err(err).Str("event_type", eventType).Msg("event payload marshal failed")
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.log.Error().Err(err).Str("event_type", eventType).Msg("event envelope marshal failed")
		return
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	select {
	case <-p.closeCh:
		p.log.Warn().Str("event_type", eventType).Msg("publisher stopped, dropping event")
		return
	default:
	}
	select {
	case p.inbox <- msg:
	default:
		p.log.Warn().Str("event_type", eventType).Msg("event inbox full, dropping event")
	}
}

func (p *KafkaPublisher) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.log.Error().Err(err).Msg("kafka write failed")
	}
}

// WaitClosed blocks until the writer loop has drained and exited.
func (p *KafkaPublisher) WaitClosed() { <-p.closeCh }
