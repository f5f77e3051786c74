package eventstream

import "context"

// Publisher publishes query events to an event stream backend.
type Publisher interface {
	PublishQueryAudited(ctx context.Context, event *QueryAuditedEvent) error
	Close() error
}
