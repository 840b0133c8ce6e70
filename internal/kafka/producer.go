package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Topics of the back-office audit stream. Events are published after the
// owning transaction commits; consumers (reporting, reconciliation) never
// feed back into quota decisions.
const (
	TopicPreSaleCreated  = "santas.anticipada.creada"
	TopicPreSaleRedeemed = "santas.anticipada.impresa"
	TopicPreSaleDeleted  = "santas.anticipada.eliminada"
	TopicSaleRecorded    = "santas.venta.registrada"
)

// AllTopics lists every topic the service publishes, for bootstrap.
var AllTopics = []string{
	TopicPreSaleCreated,
	TopicPreSaleRedeemed,
	TopicPreSaleDeleted,
	TopicSaleRecorded,
}

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// Publish writes one message to the topic. The value is marshalled to JSON.
func (p *Producer) Publish(topic string, key string, value interface{}) error {
	msgBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
