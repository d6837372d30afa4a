package notifications

import (
	"context"
	"fmt"
	"time"

	"turfbook/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaProducerConfig contains configuration for the Kafka notification producer
type KafkaProducerConfig struct {
	Brokers           []string
	NotificationTopic string
	RetryMax          int
	TimeoutMs         int
	RequiredAcks      sarama.RequiredAcks
	CompressionType   sarama.CompressionCodec
	IdempotentWrites  bool
	MaxMessageBytes   int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig(brokers []string, topic string) *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:           brokers,
		NotificationTopic: topic,
		RetryMax:          3,
		TimeoutMs:         10000,
		RequiredAcks:      sarama.WaitForAll,
		CompressionType:   sarama.CompressionSnappy,
		IdempotentWrites:  true,
		MaxMessageBytes:   1000000,
	}
}

// KafkaNotificationProducer is an Outbox that publishes emails to a topic;
// KafkaNotificationConsumer performs the actual delivery.
type KafkaNotificationProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaNotificationProducer creates a new Kafka notification producer
func NewKafkaNotificationProducer(config *KafkaProducerConfig) (*KafkaNotificationProducer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps a recipient's emails in order
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return NewKafkaNotificationProducerWith(producer, config.NotificationTopic), nil
}

// NewKafkaNotificationProducerWith wraps an existing sarama producer
func NewKafkaNotificationProducerWith(producer sarama.SyncProducer, topic string) *KafkaNotificationProducer {
	return &KafkaNotificationProducer{producer: producer, topic: topic}
}

func (knp *KafkaNotificationProducer) Enqueue(ctx context.Context, email *EmailNotification) error {
	if err := email.Validate(); err != nil {
		return err
	}

	email.Status = NotificationStatusQueued
	email.UpdatedAt = time.Now()

	messageBytes, err := email.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     knp.topic,
		Key:       sarama.StringEncoder(email.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   createHeaders(email),
		Timestamp: email.CreatedAt,
	}

	partition, offset, err := knp.producer.SendMessage(message)
	if err != nil {
		email.MarkFailed(err)
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	logger.GetDefault().DebugWithContext(ctx, "Notification published", map[string]interface{}{
		"topic":     knp.topic,
		"partition": partition,
		"offset":    offset,
		"type":      email.Type,
	})
	return nil
}

func createHeaders(email *EmailNotification) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(email.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(email.Type)},
		{Key: []byte("content_type"), Value: []byte("application/json")},
	}
}

func (knp *KafkaNotificationProducer) Close() error {
	if err := knp.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}
