package episodes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterjsb/k9/internal/database"
)

var catalogue = []Episode{
	{ID: "tt0563001", Title: "The Parting of the Ways", Season: 1, Episode: 13},
	{ID: "tt0562992", Title: "Rose", Season: 1, Episode: 1},
	{ID: "tt0562993", Title: "The End of the World", Season: 1, Episode: 2},
	{ID: "tt1000252", Title: "100%_Dalek", Season: 9, Episode: 1},
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "episodes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewStore(db)
	require.NoError(t, s.Rebuild(ctx, catalogue))
	return s
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Search(context.Background(), "the", 10)
	require.NoError(t, err)

	want := []Episode{catalogue[2], catalogue[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_CaseInsensitiveAndCleaned(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Search(context.Background(), "\tROSE\n", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rose", got[0].Title)
}

func TestSearch_WildcardsAreLiteral(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Search(context.Background(), "%", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100%_Dalek", got[0].Title)

	got, err = s.Search(context.Background(), "_", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.Search(context.Background(), "' OR 1=1 --", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_Limit(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Search(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestLoadFile_ReplacesCatalogue(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "episodes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"tt0000001","title":"Blink","season":3,"episode":10}]`), 0o644))

	n, err := s.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Search(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Blink", got[0].Title)
}

func TestLoadFile_MissingFileLeavesEmptyCatalogue(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "episodes.db"))
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(db)
	n, err := s.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.Zero(t, n)

	got, err := s.Search(ctx, "Rose", 10)
	require.NoError(t, err)
	assert.Nil(t, got)
}
