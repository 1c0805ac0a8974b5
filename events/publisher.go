package events

import (
	"context"
	"encoding/json"
	"strings"

	wkafka "github.com/ThreeDotsLabs/watermill-kafka/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/code19m/errx"

	"github.com/rise-and-shine/order-inventory-platform/logger"
)

// Publisher emits domain events. The key selects the Kafka partition,
// so events with the same key keep their relative order.
type Publisher interface {
	Publish(ctx context.Context, name, key string, payload map[string]any) error
	Close() error
}

// KafkaPublisher implements Publisher using a Watermill Kafka publisher.
type KafkaPublisher struct {
	topic     string
	publisher message.Publisher
}

// NewKafkaPublisher creates a Kafka-backed event publisher.
func NewKafkaPublisher(cfg PublisherConfig, log logger.Logger) (*KafkaPublisher, error) {
	saramaCfg := wkafka.DefaultSaramaSyncPublisherConfig()

	// Currently support only SASL_PLAINTEXT authentication.
	if cfg.SaslUsername != "" && cfg.SaslPassword != "" {
		saramaCfg.Net.SASL.Enable = true
		saramaCfg.Net.SASL.User = cfg.SaslUsername
		saramaCfg.Net.SASL.Password = cfg.SaslPassword
	}

	marshaler := wkafka.NewWithPartitioningMarshaler(func(_ string, msg *message.Message) (string, error) {
		partitionKey := msg.Metadata.Get("partition_key")
		if partitionKey == "" {
			return "", errx.New("partition key is empty")
		}
		return partitionKey, nil
	})

	publisher, err := wkafka.NewPublisher(
		strings.Split(cfg.Brokers, ","),
		marshaler,
		saramaCfg,
		newLoggerAdapter(log.Named("events.publisher")),
	)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &KafkaPublisher{
		topic:     cfg.Topic,
		publisher: publisher,
	}, nil
}

// Publish wraps the payload in an envelope and sends it to the
// configured topic.
func (p *KafkaPublisher) Publish(_ context.Context, name, key string, payload map[string]any) error {
	envelope := NewEnvelope(name, payload)

	value, err := json.Marshal(envelope)
	if err != nil {
		return errx.Wrap(err)
	}

	msg := message.NewMessage(envelope.ID, value)
	msg.Metadata.Set("event_name", name)
	msg.Metadata.Set("partition_key", key)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{
			"topic":      p.topic,
			"event_name": name,
		}))
	}

	return nil
}

// Close closes the underlying Kafka publisher.
func (p *KafkaPublisher) Close() error {
	return p.publisher.Close()
}

// NopPublisher discards every event. Useful in tests and for
// deployments without a broker.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, map[string]any) error { return nil }

func (NopPublisher) Close() error { return nil }
