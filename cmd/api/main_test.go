package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/mailblocks/config"
	"github.com/Notifuse/mailblocks/internal/app"
	"github.com/Notifuse/mailblocks/pkg/logger"
)

func createTestConfig(t *testing.T) *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "error",
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 0, CORSAllowOrigin: "*"},
		Storage: config.StorageConfig{
			Driver:   config.StorageDriverBolt,
			BoltPath: filepath.Join(t.TempDir(), "api.db"),
		},
		Render: config.RenderConfig{GroupGap: 10, ContentWidth: 600},
	}
}

func restoreGlobals(t *testing.T) {
	origNotify, origNewApp := signalNotify, newApp
	t.Cleanup(func() {
		signalNotify = origNotify
		newApp = origNewApp
	})
}

func TestRunServer_GracefulShutdown(t *testing.T) {
	restoreGlobals(t)

	started := make(chan app.AppInterface, 1)
	newApp = func(cfg *config.Config, opts ...app.AppOption) app.AppInterface {
		instance := app.NewApp(cfg, opts...)
		started <- instance
		return instance
	}

	calls := 0
	signalNotify = func(c chan<- os.Signal, _ ...os.Signal) {
		calls++
		if calls > 1 {
			return
		}
		go func() {
			instance := <-started
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if instance.WaitForServerStart(ctx) {
				c <- os.Interrupt
			}
		}()
	}

	err := runServer(createTestConfig(t), logger.NewTestLogger(t))
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRunServer_InitializeFailure(t *testing.T) {
	restoreGlobals(t)

	cfg := createTestConfig(t)
	cfg.Storage.BoltPath = filepath.Join(t.TempDir(), "missing", "dir", "api.db")

	err := runServer(cfg, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open bolt storage")
}

func TestRunServer_ServerError(t *testing.T) {
	restoreGlobals(t)
	signalNotify = func(chan<- os.Signal, ...os.Signal) {}

	cfg := createTestConfig(t)
	cfg.Server.Port = -1

	err := runServer(cfg, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}
