package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"turfbook/pkg/logger"

	"github.com/IBM/sarama"
)

type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	SessionTimeoutMs  int
	HeartbeatMs       int
	MaxProcessingTime time.Duration
	OffsetOldest      bool
	NumWorkers        int
	Retry             RetryPolicy
}

func DefaultConsumerConfig(brokers []string, groupID, topic string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topics:            []string{topic},
		SessionTimeoutMs:  30000,
		HeartbeatMs:       3000,
		MaxProcessingTime: 5 * time.Minute,
		OffsetOldest:      true,
		NumWorkers:        2,
		Retry:             RetryPolicy{MaxRetries: 3, Backoff: time.Second},
	}
}

type KafkaNotificationConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	sender        EmailSender
	wg            sync.WaitGroup
}

func NewKafkaNotificationConsumer(config *ConsumerConfig, sender EmailSender) (*KafkaNotificationConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaNotificationConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		sender:        sender,
	}, nil
}

// Start launches the workers; they run until ctx is cancelled.
func (knc *KafkaNotificationConsumer) Start(ctx context.Context) {
	log := logger.GetDefault()
	log.Info("Starting notification consumer", "workers", knc.config.NumWorkers, "topics", knc.config.Topics)

	go func() {
		for err := range knc.consumerGroup.Errors() {
			log.Error("Consumer group error", "error", err)
		}
	}()

	for i := 0; i < knc.config.NumWorkers; i++ {
		knc.wg.Add(1)
		go func(workerID int) {
			defer knc.wg.Done()
			knc.runWorker(ctx, workerID)
		}(i)
	}
}

func (knc *KafkaNotificationConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &ConsumerGroupHandler{workerID: workerID, sender: knc.sender, retry: knc.config.Retry}

	for {
		if err := knc.consumerGroup.Consume(ctx, knc.config.Topics, handler); err != nil {
			logger.GetDefault().Warn("Error consuming messages", "worker", workerID, "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// Stop closes the group and waits for the workers. Cancel the Start context first.
func (knc *KafkaNotificationConsumer) Stop() error {
	err := knc.consumerGroup.Close()
	knc.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type ConsumerGroupHandler struct {
	workerID int
	sender   EmailSender
	retry    RetryPolicy
}

func (h *ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error { return nil }

func (h *ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			// Undeliverable messages are still marked; retrying them forever would block the partition.
			if err := h.processMessage(session.Context(), message); err != nil {
				logger.GetDefault().Warn("Dropping notification", "worker", h.workerID, "offset", message.Offset, "error", err)
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *ConsumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var email EmailNotification
	if err := json.Unmarshal(message.Value, &email); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	if err := email.Validate(); err != nil {
		return err
	}

	email.Status = NotificationStatusSending
	if err := sendWithRetry(ctx, h.sender, &email, h.retry); err != nil {
		email.MarkFailed(err)
		logger.GetDefault().LogNotificationFailed(ctx, email.RecipientEmail, email.Subject, err)
		return err
	}

	email.MarkSent()
	return nil
}
