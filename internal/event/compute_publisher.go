package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ComputePublisher publishes compute-completed events to RabbitMQ.
type ComputePublisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

func NewComputePublisher(conn *RabbitMQConnection) *ComputePublisher {
	return &ComputePublisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

// PublishComputeCompleted publishes one event to the compute events queue.
// The queue itself is declared when the connection is opened.
func (p *ComputePublisher) PublishComputeCompleted(ctx context.Context, evt ComputeCompletedEvent) error {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}

	body, err := json.Marshal(evt)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal compute event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",                 // exchange
		ComputeEventsQueue, // routing key (queue name)
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish compute event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Compute event published",
		"queue", ComputeEventsQueue,
		"event_id", evt.EventID,
		"scope", evt.Scope,
		"policy_id", evt.PolicyID,
		"row_count", evt.RowCount,
	)

	return nil
}
