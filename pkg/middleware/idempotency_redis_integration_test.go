//go:build integration

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gatepass/pkg/logger"
	"gatepass/pkg/middleware"
	"gatepass/pkg/testutil/containers"
)

func TestRedisIdempotencyStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	store := middleware.NewRedisIdempotencyStore(rc.Client, time.Minute, logger.Discard())
	ctx := context.Background()

	_, found := store.Get(ctx, "missing")
	require.False(t, found)

	store.Set(ctx, "k", &middleware.CachedResponse{
		StatusCode: http.StatusCreated,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(`{"groupId":"AB12"}`),
	})
	got, found := store.Get(ctx, "k")
	require.True(t, found)
	require.Equal(t, http.StatusCreated, got.StatusCode)
	require.JSONEq(t, `{"groupId":"AB12"}`, string(got.Body))

	ttl, err := rc.Client.TTL(ctx, "gatepass:idempotency:k").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}

// Two replicas sharing Redis replay each other's responses.
func TestIdempotency_SharedAcrossReplicas(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"groupId":"AB12"}`))
	})

	replica := func() http.Handler {
		store := middleware.NewRedisIdempotencyStore(rc.Client, time.Minute, logger.Discard())
		return middleware.Idempotency(store, middleware.DefaultIdempotencyHeader, logger.Discard())(handler)
	}
	a, b := replica(), replica()

	send := func(h http.Handler) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/visitors/register", strings.NewReader(`{}`))
		req.Header.Set(middleware.DefaultIdempotencyHeader, "submit-1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	first := send(a)
	second := send(b)

	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
