package kafka

import (
	"context"
	"errors"
	"gatepass/pkg/logger"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		f.cancel()
		return kafka.Message{}, context.Canceled
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeFetcher) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeFetcher) Close() error { return nil }

func TestConsumer_RetriesTransientThenCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{
		messages: []kafka.Message{{Topic: "otp", Offset: 7, Key: []byte("k"), Value: []byte(`{}`)}},
		cancel:   cancel,
	}

	calls := 0
	handler := func(ctx context.Context, msg Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("gateway busy", nil)
		}
		return nil
	}

	c := newConsumer(fetcher, "otp", "notifier", 3, handler, logger.Discard())
	c.retryBackoff = time.Millisecond

	err := c.Start(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 3, calls)
	require.Equal(t, []int64{7}, fetcher.committed)
}

func TestConsumer_PermanentErrorIsNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{
		messages: []kafka.Message{{Offset: 1}, {Offset: 2}},
		cancel:   cancel,
	}

	calls := 0
	handler := func(ctx context.Context, msg Message) error {
		calls++
		return NewPermanentError("undecodable", errors.New("json"))
	}

	c := newConsumer(fetcher, "otp", "notifier", 5, handler, logger.Discard())
	_ = c.Start(ctx)

	require.Equal(t, 2, calls)
	require.Equal(t, []int64{1, 2}, fetcher.committed)
}

func TestConsumer_MiddlewareOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var order []string
	fetcher := &fakeFetcher{messages: []kafka.Message{{Offset: 1}}, cancel: cancel}
	c := newConsumer(fetcher, "otp", "notifier", 0, func(ctx context.Context, msg Message) error {
		order = append(order, "handler")
		return nil
	}, logger.Discard())

	for _, name := range []string{"outer", "inner"} {
		name := name
		c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	_ = c.Start(ctx)
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Start(ctx), ErrConsumerClosed)
}
