package event

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream card events are appended to when no
// stream name is configured.
const DefaultStream = "card:events"

// StreamEmitter appends card events to a Redis stream for the external
// history indexer to consume.
type StreamEmitter struct {
	client *redis.Client
	stream string
}

// NewStreamEmitter constructs a Redis stream emitter.
func NewStreamEmitter(client *redis.Client, stream string) *StreamEmitter {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamEmitter{client: client, stream: stream}
}

// Emit appends the event to the stream.
func (e *StreamEmitter) Emit(ctx context.Context, ev Event) error {
	if err := e.client.XAdd(ctx, &redis.XAddArgs{
		Stream: e.stream,
		Values: ev.Fields(),
	}).Err(); err != nil {
		return fmt.Errorf("append %s event to stream %s: %w", ev.Kind, e.stream, err)
	}
	return nil
}
