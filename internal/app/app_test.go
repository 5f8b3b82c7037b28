package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/bookmarks/internal/config"
	"github.com/vadimbarashkov/bookmarks/internal/entity"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Storage.Driver = driver
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "bookmarks.db")
	cfg.HTTPServer.Port = 0

	return cfg
}

func TestNewLogger(t *testing.T) {
	t.Run("prod logs json", func(t *testing.T) {
		cfg := testConfig(t, config.DriverMemory)
		cfg.Env = config.EnvProd

		var buf bytes.Buffer
		NewLogger(cfg, &buf).Info("hello")

		assert.Contains(t, buf.String(), `"hello"`)
		assert.True(t, strings.HasPrefix(buf.String(), "{"))
	})

	t.Run("level from config", func(t *testing.T) {
		cfg := testConfig(t, config.DriverMemory)
		cfg.LogLevel = "error"

		var buf bytes.Buffer
		NewLogger(cfg, &buf).Info("hidden")

		assert.NotContains(t, buf.String(), "hidden")
	})
}

func TestNewUseCase(t *testing.T) {
	t.Run("unsupported driver", func(t *testing.T) {
		uc, closeStore, err := newUseCase(context.Background(), testConfig(t, "mysql"))

		assert.Error(t, err)
		assert.Nil(t, uc)
		assert.Nil(t, closeStore)
	})

	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()

			uc, closeStore, err := newUseCase(ctx, testConfig(t, driver))
			require.NoError(t, err)
			t.Cleanup(func() {
				closeStore()
			})

			created, err := uc.CreateBookmark(ctx, entity.Bookmark{Title: "REI", URL: "https://www.rei.com/", Rating: 4})
			require.NoError(t, err)

			got, err := uc.GetBookmark(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	}
}

func TestRun(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		err := Run(context.Background(), testConfig(t, "mysql"))

		assert.Error(t, err)
	})

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- Run(ctx, testConfig(t, config.DriverMemory))
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})
}
