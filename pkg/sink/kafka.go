// Package sink publishes engine events to external systems. Sinks are
// informational: the core never depends on their availability.
package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/veldt-exchange/matchcore/pkg/engine"
)

// KafkaPublisher streams executed trades to a kafka topic, keyed by symbol
// so one instrument's trades stay ordered within a partition.
type KafkaPublisher struct {
	writer  *kafka.Writer
	log     *zap.SugaredLogger
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.SugaredLogger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        true, // never stall the matching goroutine
			BatchTimeout: 10 * time.Millisecond,
		},
		log:     log,
		timeout: 5 * time.Second,
	}
}

func (p *KafkaPublisher) OnTrade(t engine.Trade) {
	val, err := json.Marshal(t)
	if err != nil {
		p.log.Errorw("kafka_marshal_failed", "seq", t.Seq, "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(t.Symbol),
		Value: val,
	}); err != nil {
		p.log.Errorw("kafka_publish_failed", "seq", t.Seq, "err", err)
	}
}

func (p *KafkaPublisher) OnOrder(engine.OrderEvent) {}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

var _ engine.Listener = (*KafkaPublisher)(nil)
