package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "links.json")
	return NewStore(path, zap.NewNop()), path
}

func testRecord(url string) LinkRecord {
	return LinkRecord{
		Title:       "title",
		ShortURL:    "https://vk.cc/abc",
		OriginalURL: url,
		StatsKey:    "abc",
		CreatedAt:   time.Now(),
	}
}

func TestAddLinkAppends(t *testing.T) {
	store, _ := newTestStore(t)

	rec := testRecord("https://example.com")
	require.NoError(t, store.AddLink("1", rec))

	links := store.UserLinks("1")
	require.Len(t, links, 1)
	assert.Equal(t, rec.OriginalURL, links[0].OriginalURL)
	assert.Equal(t, rec.StatsKey, links[0].StatsKey)
}

func TestAddLinkRejectsDuplicate(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddLink("1", testRecord("https://example.com")))

	err := store.AddLink("1", testRecord("https://example.com"))
	assert.ErrorIs(t, err, ErrDuplicateLink)
	assert.Len(t, store.UserLinks("1"), 1)

	// Same URL for a different user is not a duplicate.
	assert.NoError(t, store.AddLink("2", testRecord("https://example.com")))
}

func TestAddLinkEvictsOldest(t *testing.T) {
	store, _ := newTestStore(t)

	for i := 0; i < MaxLinksPerUser+1; i++ {
		url := fmt.Sprintf("https://example.com/%d", i)
		require.NoError(t, store.AddLink("1", testRecord(url)))
	}

	links := store.UserLinks("1")
	require.Len(t, links, MaxLinksPerUser)
	assert.Equal(t, "https://example.com/1", links[0].OriginalURL)
	assert.Equal(t, fmt.Sprintf("https://example.com/%d", MaxLinksPerUser), links[len(links)-1].OriginalURL)
}

func TestDeleteLink(t *testing.T) {
	store, _ := newTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AddLink("1", testRecord(fmt.Sprintf("https://example.com/%d", i))))
	}

	assert.ErrorIs(t, store.DeleteLink("1", -1), ErrLinkNotFound)
	assert.ErrorIs(t, store.DeleteLink("1", 3), ErrLinkNotFound)
	assert.Len(t, store.UserLinks("1"), 3)

	require.NoError(t, store.DeleteLink("1", 1))
	links := store.UserLinks("1")
	require.Len(t, links, 2)
	assert.Equal(t, "https://example.com/0", links[0].OriginalURL)
	assert.Equal(t, "https://example.com/2", links[1].OriginalURL)
}

func TestRenameLink(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddLink("1", testRecord("https://example.com")))

	assert.ErrorIs(t, store.RenameLink("1", 1, "new"), ErrLinkNotFound)
	assert.ErrorIs(t, store.RenameLink("1", 0, "   "), ErrEmptyTitle)

	require.NoError(t, store.RenameLink("1", 0, "renamed"))
	assert.Equal(t, "renamed", store.UserLinks("1")[0].Title)
}

func TestRenameTruncatesTitle(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddLink("1", testRecord("https://example.com")))

	long := strings.Repeat("a", 150)
	require.NoError(t, store.RenameLink("1", 0, long))
	assert.Equal(t, strings.Repeat("a", MaxTitleLen), store.UserLinks("1")[0].Title)
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "", TruncateTitle("   "))
	assert.Equal(t, "hello", TruncateTitle("  hello  "))
	assert.Equal(t, strings.Repeat("я", MaxTitleLen), TruncateTitle(strings.Repeat("я", 150)))
}

func TestStoreReloadsFromFile(t *testing.T) {
	store, path := newTestStore(t)

	require.NoError(t, store.AddLink("1", testRecord("https://example.com")))

	reloaded := NewStore(path, zap.NewNop())
	links := reloaded.UserLinks("1")
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com", links[0].OriginalURL)
}

func TestCorruptFileYieldsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewStore(path, zap.NewNop())
	assert.Empty(t, store.UserLinks("1"))
}

func TestFlushFailureLeavesStoreUnchanged(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddLink("1", testRecord("https://example.com")))

	// Point the store at a directory that no longer exists so the next flush fails.
	store.path = filepath.Join(t.TempDir(), "gone", "links.json")

	err := store.AddLink("1", testRecord("https://example.org"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateLink)
	assert.Len(t, store.UserLinks("1"), 1)
}

func TestDeletingLastLinkRemovesUser(t *testing.T) {
	store, path := newTestStore(t)

	require.NoError(t, store.AddLink("1", testRecord("https://example.com")))
	require.NoError(t, store.DeleteLink("1", 0))
	assert.Empty(t, store.UserLinks("1"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "example.com")
}
