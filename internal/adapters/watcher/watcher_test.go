package watcher_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/justrun/internal/adapters/watcher"
	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/justrun/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func collect(w *watcher.Watcher) <-chan ports.WatchEvent {
	ch := make(chan ports.WatchEvent, 16)
	go func() {
		defer close(ch)
		for ev := range w.Events() {
			ch <- ev
		}
	}()
	return ch
}

func waitFor(t *testing.T, ch <-chan ports.WatchEvent, path string) ports.WatchEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "event stream closed before %s was reported", path)
			if ev.Path == path {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for event on %s", path)
		}
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "index.ts"), "export const a = 1;\n")

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(mockLogger)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx, ports.WatchOptions{
		Roots:      []string{root},
		Ignore:     domain.DefaultIgnores(),
		Extensions: domain.DefaultExtensions(),
	}))
	events := collect(w)

	src := filepath.Join(root, "src", "index.ts")
	writeFile(t, src, "export const a = 2;\n")
	ev := waitFor(t, events, src)
	assert.Contains(t, []ports.WatchOp{ports.OpWrite, ports.OpCreate}, ev.Operation)

	// Directories created after Start are picked up.
	nested := filepath.Join(root, "src", "feature", "view.tsx")
	writeFile(t, filepath.Join(root, "src", "feature", "placeholder.ts"), "")
	time.Sleep(100 * time.Millisecond)
	writeFile(t, nested, "export {};\n")
	waitFor(t, events, nested)
}

func TestWatcher_StopEndsEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	w, err := watcher.NewWatcher(mockLogger)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background(), ports.WatchOptions{Roots: []string{t.TempDir()}}))
	events := collect(w)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("event stream did not end after Stop")
	}
}
