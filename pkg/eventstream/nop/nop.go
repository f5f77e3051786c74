package nop

import (
	"context"

	"github.com/contractminer/contractminer/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishQueryAudited validates input and otherwise does nothing.
func (p *Publisher) PublishQueryAudited(_ context.Context, event *eventstream.QueryAuditedEvent) error {
	if event == nil {
		return eventstream.ErrNilQueryEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
