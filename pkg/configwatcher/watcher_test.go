package configwatcher

import (
	"context"
	"fmt"
	"onlinecourse_backend/internal/config"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configTemplate = `
server:
  mode: debug
database:
  driver: sqlite
jwt:
  secret: test
storage:
  local_path: %s
exam:
  scoring: %s
`

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	DebounceDelay = 50 * time.Millisecond

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	write := func(scoring string) {
		body := fmt.Sprintf(configTemplate, filepath.Join(dir, "uploads"), scoring)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	write(config.ScoringWeighted)

	var mu sync.Mutex
	var got []string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(cfg *config.Config) {
			mu.Lock()
			got = append(got, cfg.Exam.Scoring)
			mu.Unlock()
		})
	}()

	// Give the watcher time to register before the change.
	time.Sleep(100 * time.Millisecond)
	write(config.ScoringUnweighted)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1] == config.ScoringUnweighted
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
