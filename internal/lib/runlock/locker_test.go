package runlock

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"leasing_hub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocker_Disabled(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	l, err := NewLocker(context.Background(), config.RedisConfig{Enabled: false}, log)
	require.NoError(t, err)

	lock, err := l.Obtain(context.Background(), "lock:test", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, lock.Release(context.Background()))
	assert.NoError(t, l.Close())
}

func TestNewLocker_Unreachable(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewLocker(ctx, config.RedisConfig{Enabled: true, Addr: "127.0.0.1:1"}, log)
	assert.Error(t, err)
}
