package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writePatch(t, "patch.yaml", yamlPatch)

	reloaded := make(chan *Patch, 4)
	w, err := NewWatcher(path, func(p *Patch) { reloaded <- p }, nil)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// invalid content is skipped
	require.NoError(t, os.WriteFile(path, []byte("name: broken\n"), 0o644))
	select {
	case p := <-reloaded:
		t.Fatalf("invalid patch delivered: %+v", p)
	case <-time.After(200 * time.Millisecond):
	}

	updated := yamlPatch + "  - from: sum\n    to: sq\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	select {
	case p := <-reloaded:
		assert.Len(t, p.Connections, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := writePatch(t, "patch.yaml", yamlPatch)

	reloaded := make(chan *Patch, 1)
	w, err := NewWatcher(path, func(p *Patch) { reloaded <- p }, nil)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path+".bak", []byte(yamlPatch), 0o644))
	select {
	case <-reloaded:
		t.Fatal("reload triggered by unrelated file")
	case <-time.After(150 * time.Millisecond):
	}

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
