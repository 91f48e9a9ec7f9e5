package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSender publishes messages as JSON keyed by event kind.
type KafkaSender struct {
	w *kafka.Writer
}

func NewKafka(brokers []string, topic string) *KafkaSender {
	return &KafkaSender{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}}
}

func (k *KafkaSender) Send(ctx context.Context, m Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return k.w.WriteMessages(ctx, kafka.Message{Key: []byte(m.Kind), Value: b})
}

func (k *KafkaSender) Close() error { return k.w.Close() }
