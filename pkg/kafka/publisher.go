package kafka

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/questx-lab/social-discord/pkg/pubsub"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

type publisher struct {
	producer sarama.SyncProducer
}

// NewPublisher creates a synchronous producer. Packs with the same key go to the same
// partition, so their order is kept.
func NewPublisher(clientID string, brokerAddrs []string) (*publisher, error) {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokerAddrs, config)
	if err != nil {
		return nil, err
	}

	return &publisher{producer: producer}, nil
}

func (p *publisher) Stop(ctx context.Context) error {
	return p.producer.Close()
}

func (p *publisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.ByteEncoder(pack.Key),
		Value: sarama.ByteEncoder(pack.Msg),
	})
	if err != nil {
		return fmt.Errorf("cannot send message to %s: %w", topic, err)
	}

	xcontext.Logger(ctx).Debugf("Published message to %s[%d] at offset %d", topic, partition, offset)
	return nil
}
