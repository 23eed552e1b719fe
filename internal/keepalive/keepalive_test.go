package keepalive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := New(Config{Schedule: "every now and then"}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestRun_PingsDatabaseAndURL(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var pings int32
	db := PingFunc(func(ctx context.Context) error {
		atomic.AddInt32(&pings, 1)
		return errors.New("db down")
	})

	s, err := New(Config{Schedule: "@every 14m", URL: srv.URL}, db, zap.NewNop())
	require.NoError(t, err)

	s.Run()
	assert.Equal(t, int32(1), atomic.LoadInt32(&pings))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "a failed database ping does not skip the http ping")
}

func TestRun_SkipsAfterShutdown(t *testing.T) {
	var pings int32
	db := PingFunc(func(ctx context.Context) error {
		atomic.AddInt32(&pings, 1)
		return nil
	})
	s, err := New(Config{Schedule: "@every 1h"}, db, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()
	s.Stop()

	s.Run()
	assert.Equal(t, int32(0), atomic.LoadInt32(&pings))
}
