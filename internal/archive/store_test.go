package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/gw1000/internal/protocol"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndLatest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := time.Unix(1599021263, 0)
	second := first.Add(20 * time.Second)

	require.NoError(t, store.Save(ctx, first, protocol.Observations{
		"intemp":        23.4,
		"inhumid":       38,
		"lightningdist": nil,
	}))
	require.NoError(t, store.Save(ctx, second, protocol.Observations{
		"intemp": 23.6,
	}))

	latest, at, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, at)
	assert.Equal(t, protocol.Observations{
		"intemp":        23.6,
		"inhumid":       38.0,
		"lightningdist": nil,
	}, latest)
}

func TestStore_LatestEmpty(t *testing.T) {
	store := openTestStore(t)

	latest, at, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, latest)
	assert.True(t, at.IsZero())
}

func TestStore_History(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1599021263, 0)

	for i, v := range []any{20.0, nil, 22.0} {
		require.NoError(t, store.Save(ctx, base.Add(time.Duration(i)*time.Minute),
			protocol.Observations{"outtemp": v, "outhumid": 50}))
	}

	points, err := store.History(ctx, "outtemp", base.Add(30*time.Second))
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, base.Add(time.Minute), points[0].Time)
	assert.Nil(t, points[0].Value)
	require.NotNil(t, points[1].Value)
	assert.Equal(t, 22.0, *points[1].Value)

	none, err := store.History(ctx, "absent", base)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_RejectsNonNumeric(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Save(ctx, time.Unix(100, 0), protocol.Observations{"intemp": 20.0, "station": "garden"})
	assert.ErrorContains(t, err, "non-numeric")

	// Nothing from the failed poll is kept
	latest, _, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), time.Unix(100, 0), protocol.Observations{"uvi": 3}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	latest, _, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, protocol.Observations{"uvi": 3.0}, latest)
}

func TestStore_InMemory(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), time.Unix(100, 0), protocol.Observations{"uvi": 3}))
	latest, _, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}
