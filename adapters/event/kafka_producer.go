package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/nkduy/cinevault/internal/config"
)

const TopicFavoriteEvents = "favorite.events"

type FavoriteEventType string

const (
	FavoriteEventTypeAdded   FavoriteEventType = "favorite.added"
	FavoriteEventTypeRemoved FavoriteEventType = "favorite.removed"
)

type FavoriteEventPayload struct {
	EventType  FavoriteEventType `json:"event_type"`
	FavoriteID int64             `json:"favorite_id"`
	UserID     uuid.UUID         `json:"user_id"`
	MediaID    int64             `json:"media_id"`
	MediaType  string            `json:"media_type"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type KafkaProducerClient struct {
	FavoriteEventsWriter *kafka.Writer
}

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	favoriteWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicFavoriteEvents,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaProducerClient{
		FavoriteEventsWriter: favoriteWriter,
	}, nil
}

// PublishFavoriteEvent keys messages by user so one user's favorite
// history stays ordered within a partition.
func (c *KafkaProducerClient) PublishFavoriteEvent(ctx context.Context, payload FavoriteEventPayload) error {
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal favorite event failed: %w", err)
	}

	return c.FavoriteEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.UserID.String()),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.FavoriteEventsWriter != nil {
		c.FavoriteEventsWriter.Close()
	}
}
