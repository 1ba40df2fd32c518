package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"ideaforge-backend/application/ports"
	"ideaforge-backend/domain/events"
)

// eventSource identifies this service on the bus
const eventSource = "ideaforge.backend"

// maxBatchSize is the EventBridge PutEvents entry limit
const maxBatchSize = 10

// EventBridgePublisher publishes domain events to an EventBridge bus.
// Publishing is fire-and-forget from the caller's perspective: a failed
// publish is reported but never blocks the originating operation.
type EventBridgePublisher struct {
	client   *awseventbridge.Client
	busName  string
	logger   *zap.Logger
	handlers map[string][]ports.EventHandler
}

// NewEventBridgePublisher creates a new publisher for the named bus
func NewEventBridgePublisher(client *awseventbridge.Client, busName string, logger *zap.Logger) *EventBridgePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBridgePublisher{
		client:   client,
		busName:  busName,
		logger:   logger,
		handlers: make(map[string][]ports.EventHandler),
	}
}

// Publish sends a single event
func (p *EventBridgePublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends events in chunks of the EventBridge entry limit
func (p *EventBridgePublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}

	p.dispatchLocal(ctx, batch)

	for start := 0; start < len(batch); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(batch) {
			end = len(batch)
		}

		entries := make([]types.PutEventsRequestEntry, 0, end-start)
		for _, event := range batch[start:end] {
			detail, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to marshal event %s: %w", event.GetEventType(), err)
			}

			entries = append(entries, types.PutEventsRequestEntry{
				EventBusName: aws.String(p.busName),
				Source:       aws.String(eventSource),
				DetailType:   aws.String(event.GetEventType()),
				Detail:       aws.String(string(detail)),
			})
		}

		result, err := p.client.PutEvents(ctx, &awseventbridge.PutEventsInput{
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("failed to publish events: %w", err)
		}

		if result.FailedEntryCount > 0 {
			p.logger.Warn("Some events failed to publish",
				zap.Int32("failedCount", result.FailedEntryCount),
				zap.Int("batchSize", len(entries)),
			)
		}
	}

	p.logger.Debug("Published domain events",
		zap.Int("count", len(batch)),
		zap.String("bus", p.busName),
	)

	return nil
}

// Subscribe registers an in-process handler for an event type
func (p *EventBridgePublisher) Subscribe(eventType string, handler ports.EventHandler) error {
	p.handlers[eventType] = append(p.handlers[eventType], handler)
	return nil
}

// Unsubscribe removes an in-process handler
func (p *EventBridgePublisher) Unsubscribe(eventType string, handler ports.EventHandler) error {
	handlers := p.handlers[eventType]
	for i, h := range handlers {
		if h == handler {
			p.handlers[eventType] = append(handlers[:i], handlers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("handler not subscribed for event type %s", eventType)
}

// dispatchLocal invokes in-process subscribers before the remote publish
func (p *EventBridgePublisher) dispatchLocal(ctx context.Context, batch []events.DomainEvent) {
	for _, event := range batch {
		for _, handler := range p.handlers[event.GetEventType()] {
			if !handler.CanHandle(event.GetEventType()) {
				continue
			}
			if err := handler.Handle(ctx, event); err != nil {
				p.logger.Warn("Local event handler failed",
					zap.String("eventType", event.GetEventType()),
					zap.Error(err),
				)
			}
		}
	}
}
