package events

import (
	"context"
	"errors"
	"strings"

	"github.com/IBM/sarama"
	"github.com/code19m/errx"

	"github.com/rise-and-shine/order-inventory-platform/logger"
	"github.com/rise-and-shine/order-inventory-platform/meta"
)

// HandleFunc is a delivery handler that should be injected into the consumer.
type HandleFunc func(context.Context, *sarama.ConsumerMessage) error

// Consumer reads domain events from Kafka and dispatches them to a
// handler through a chain of recovery, timeout, metadata and logging
// wrappers.
type Consumer struct {
	cfg           ConsumerConfig
	topic         string
	logger        logger.Logger
	consumerGroup sarama.ConsumerGroup
	handleFn      HandleFunc
}

// NewConsumer creates a new kafka consumer.
// Uses global service info from meta.SetServiceInfo().
func NewConsumer(cfg ConsumerConfig, handleFn HandleFunc) (*Consumer, error) {
	saramaCfg, err := cfg.getSaramaConfig(meta.GetServiceName())
	if err != nil {
		return nil, errx.Wrap(err)
	}

	consumerGroup, err := sarama.NewConsumerGroup(strings.Split(cfg.Brokers, ","), cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &Consumer{
		cfg:           cfg,
		topic:         cfg.Topic,
		logger:        logger.Named("events.consumer"),
		consumerGroup: consumerGroup,
		handleFn:      handleFn,
	}, nil
}

// Start starts the consumer and begins consuming messages.
func (c *Consumer) Start() error {
	// the main consume loop, parent of the ConsumeClaim() partition consumer loop
	for {
		err := c.consumerGroup.Consume(context.Background(), []string{c.topic}, c)
		if err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return errx.Wrap(err)
		}

		c.logger.Info("[events] rebalancing occurred, waiting for new messages")
	}
}

// Stop closes the consumer group.
func (c *Consumer) Stop() error {
	if err := c.consumerGroup.Close(); err != nil {
		return errx.Wrap(err)
	}
	return nil
}

// Setup implements sarama.ConsumerGroupHandler contract.
func (c *Consumer) Setup(_ sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup implements sarama.ConsumerGroupHandler contract.
func (c *Consumer) Cleanup(_ sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	// NOTE:
	// Do not move the code below to a goroutine.
	// The `ConsumeClaim` itself is called within a goroutine,
	// https://github.com/IBM/sarama/blob/main/consumer_group.go#L27-L29
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				// The channel is closed, exit the loop
				return nil
			}

			chain := c.buildHandlerChain()

			// ignore the error and move on to the next message
			// as the error is already handled in the handler chain
			_ = chain(context.Background(), message)

			session.MarkMessage(message, "")

		// Should return when `session.Context()` is done
		// if not, will raise `ErrRebalanceInProgress` or `read tcp <ip>:<port>: i/o timeout` when kafka rebalance
		// https://github.com/IBM/sarama/issues/1192
		case <-session.Context().Done():
			return nil
		}
	}
}

func (c *Consumer) buildHandlerChain() HandleFunc {
	// start with the core business logic handler
	handler := c.handleFn

	// build the chain in reverse order (last wrapper first)
	handler = c.handlerWithErrorHandling(handler)  // 5. error handling
	handler = c.handlerWithLogging(handler)        // 4. logging
	handler = c.handlerWithTimeout(handler)        // 3. timeout
	handler = c.handlerWithMetaInjection(handler)  // 2. meta injection
	handler = c.handlerWithRecovery(handler)       // 1. recovery (outermost)

	return handler
}
