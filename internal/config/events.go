package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/exercise-service/internal/events"
)

// Publisher backends selectable through EVENTS_PUBLISHER.
const (
	PublisherKafka  = "kafka"
	PublisherMemory = "memory"
	PublisherMock   = "mock"
)

// EventConfig selects where grading and generation events go.
type EventConfig struct {
	Enabled       bool
	Publisher     string
	KafkaBrokers  string
	ExerciseTopic string
}

// GetKafkaBrokers returns the comma separated broker list as a slice.
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// CreateEventPublisher builds the configured publisher. Disabled or unknown
// backends get the mock publisher, which only records events.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch strings.ToLower(c.Publisher) {
	case PublisherKafka:
		brokers := c.GetKafkaBrokers()
		if len(brokers) == 0 {
			return nil, fmt.Errorf("EVENTS_PUBLISHER=kafka requires KAFKA_BROKERS")
		}
		logger.Info("Creating Kafka event publisher",
			"brokers", brokers,
			"topic", c.ExerciseTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: brokers,
			TopicName:    c.ExerciseTopic,
			Logger:       logger,
		})
	case PublisherMemory:
		logger.Info("Using in-memory event publisher", "topic", c.ExerciseTopic)
		publisher, _ := events.NewInMemoryEventPublisher(c.ExerciseTopic, logger)
		return publisher, nil
	case PublisherMock:
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
