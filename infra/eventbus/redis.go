package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/banking/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBus implements eventbus.Bus on Redis Streams. Each event type maps to
// one stream; handlers consume through a consumer group, so delivery is
// at-least-once and handlers must be idempotent.
type RedisBus struct {
	client        *redis.Client
	stream        string
	group         string
	typeFactories map[string]func() eventbus.Event
	logger        *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]eventbus.HandlerFunc
	cancel   context.CancelFunc
}

// NewWithRedis creates a Redis Streams backed event bus.
// types maps event type tags to factories for decoding consumed payloads.
func NewWithRedis(url, stream, group string, types map[string]func() eventbus.Event, logger *slog.Logger) (*RedisBus, error) {
	if url == "" || stream == "" || group == "" {
		return nil, fmt.Errorf("redis event bus: url, stream, and group are required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &RedisBus{
		client:        client,
		stream:        stream,
		group:         group,
		typeFactories: types,
		logger:        logger.With("bus", "redis", "stream", stream),
		handlers:      make(map[string][]eventbus.HandlerFunc),
		cancel:        cancel,
	}
	if err := bus.ensureGroup(ctx); err != nil {
		cancel()
		return nil, err
	}
	go bus.consume(ctx)
	return bus, nil
}

// Publish appends the event to the stream. The caller treats this as
// fire-and-forget; a publish failure is the caller's to log, not to act on.
func (b *RedisBus) Publish(ctx context.Context, event eventbus.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis event bus: marshal event: %w", err)
	}
	env, err := json.Marshal(envelope{Type: event.EventType(), Payload: payload})
	if err != nil {
		return fmt.Errorf("redis event bus: marshal envelope: %w", err)
	}
	return b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"envelope": string(env)},
	}).Err()
}

// Subscribe registers a handler for the given event type.
func (b *RedisBus) Subscribe(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Close stops the consumer loop and releases the client.
func (b *RedisBus) Close() error {
	b.cancel()
	return b.client.Close()
}

func (b *RedisBus) ensureGroup(ctx context.Context) error {
	err := b.client.XGroupCreateMkStream(ctx, b.stream, b.group, "$").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("redis event bus: create group: %w", err)
	}
	return nil
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func (b *RedisBus) consume(ctx context.Context) {
	consumer := fmt.Sprintf("%s-%d", b.group, time.Now().UnixNano())
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		streams, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: consumer,
			Streams:  []string{b.stream, ">"},
			Count:    16,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			b.logger.Error("read group failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				b.handleMessage(ctx, msg)
			}
		}
	}
}

func (b *RedisBus) handleMessage(ctx context.Context, msg redis.XMessage) {
	raw, ok := msg.Values["envelope"].(string)
	if !ok {
		b.logger.Error("malformed stream entry", "id", msg.ID)
		b.ack(ctx, msg.ID)
		return
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		b.logger.Error("failed to decode envelope", "id", msg.ID, "error", err)
		b.ack(ctx, msg.ID)
		return
	}
	factory, ok := b.typeFactories[env.Type]
	if !ok {
		b.ack(ctx, msg.ID)
		return
	}
	event := factory()
	if err := json.Unmarshal(env.Payload, event); err != nil {
		b.logger.Error("failed to decode event payload", "type", env.Type, "error", err)
		b.ack(ctx, msg.ID)
		return
	}

	b.mu.RLock()
	handlers := append([]eventbus.HandlerFunc{}, b.handlers[env.Type]...)
	b.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("failed to process event", "type", env.Type, "error", err)
		}
	}
	b.ack(ctx, msg.ID)
}

func (b *RedisBus) ack(ctx context.Context, id string) {
	if err := b.client.XAck(ctx, b.stream, b.group, id).Err(); err != nil {
		b.logger.Error("ack failed", "id", id, "error", err)
	}
}

var _ eventbus.Bus = (*RedisBus)(nil)
