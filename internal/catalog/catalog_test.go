package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/munajatapp/munajat-server/internal/errors"
)

const sampleContent = "اللَّهُمَّ إِنِّي أَسْأَلُكَ\nخدایا از تو درخواست می‌کنم\n◎وَبِقُوَّتِكَ\nو به نیرویت"

func writePrayer(t *testing.T, root, id, content string, meta string) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, contentFileName), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, audioFileName), []byte("mp3"), 0o644))
	if meta != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFileName), []byte(meta), 0o644))
	}
}

func TestCatalogScansPrayers(t *testing.T) {
	root := t.TempDir()
	writePrayer(t, root, "dua-kumayl", sampleContent, `{"title":"Dua Kumayl","durationMillis":600000}`)
	writePrayer(t, root, "dua-sabah", sampleContent, "")

	c, err := New(root, nil)
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "dua-kumayl", list[0].ID)
	assert.Equal(t, "Dua Kumayl", list[0].Title)
	assert.Equal(t, int64(600000), list[0].DurationMillis)
	// Without metadata the directory name doubles as the title.
	assert.Equal(t, "dua-sabah", list[1].Title)
}

func TestCatalogSkipsIncompleteDirectories(t *testing.T) {
	root := t.TempDir()
	writePrayer(t, root, "complete", sampleContent, "")

	// Content but no audio.
	dir := filepath.Join(root, "no-audio")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, contentFileName), []byte(sampleContent), 0o644))

	// Stray file at the root.
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("x"), 0o644))

	c, err := New(root, nil)
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, "complete", list[0].ID)
}

func TestGetByIDUnknownIsError(t *testing.T) {
	root := t.TempDir()
	writePrayer(t, root, "dua-kumayl", sampleContent, "")

	c, err := New(root, nil)
	require.NoError(t, err)

	_, err = c.GetByID("no-such-prayer")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSectionsSegmentsContent(t *testing.T) {
	root := t.TempDir()
	writePrayer(t, root, "dua-kumayl", sampleContent, "")

	c, err := New(root, nil)
	require.NoError(t, err)

	sections, err := c.Sections("dua-kumayl")
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, 0, sections[0].SectionIndex)
	assert.Equal(t, "خدایا از تو درخواست می‌کنم", sections[0].Persian)
}

func TestSectionsMalformedContent(t *testing.T) {
	root := t.TempDir()
	writePrayer(t, root, "broken", "   \n  ", "")

	c, err := New(root, nil)
	require.NoError(t, err)

	_, err = c.Sections("broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrContentFormat))
}

func TestMalformedMetadataIsIgnored(t *testing.T) {
	root := t.TempDir()
	writePrayer(t, root, "dua-kumayl", sampleContent, "{not json")

	c, err := New(root, nil)
	require.NoError(t, err)

	prayer, err := c.GetByID("dua-kumayl")
	require.NoError(t, err)
	assert.Equal(t, "dua-kumayl", prayer.Title)
}

func TestReloadPicksUpNewPrayer(t *testing.T) {
	root := t.TempDir()
	writePrayer(t, root, "first", sampleContent, "")

	c, err := New(root, nil)
	require.NoError(t, err)
	require.Len(t, c.List(), 1)

	writePrayer(t, root, "second", sampleContent, "")
	require.NoError(t, c.Reload())
	assert.Len(t, c.List(), 2)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	root := t.TempDir()
	writePrayer(t, root, "first", sampleContent, "")

	c, err := New(root, nil)
	require.NoError(t, err)

	reloaded := make(chan struct{}, 1)
	w := NewWatcher(c, 20*time.Millisecond)
	w.OnReload = func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Give the watcher a moment to arm before touching the tree.
	time.Sleep(50 * time.Millisecond)
	writePrayer(t, root, "second", sampleContent, "")

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reloaded")
	}
	assert.Len(t, c.List(), 2)
}
