package idx_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cypheracademy/certvault/pkg/idx"
)

func TestNew_UniqueAndOrdered(t *testing.T) {
	ids := make([]idx.ID, 100)
	for i := range ids {
		ids[i] = idx.New()
	}

	seen := make(map[idx.ID]struct{}, len(ids))
	for _, id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}

	require.True(t, sort.SliceIsSorted(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	}), "ids generated in sequence should sort in generation order")
}

func TestParse(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		id := idx.New()
		parsed, err := idx.Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, bad := range []string{"", "  ", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA"} {
			_, err := idx.Parse(bad)
			require.ErrorIs(t, err, idx.ErrInvalid, "input %q", bad)
		}
	})
}

func TestTime(t *testing.T) {
	at := time.Date(2024, time.March, 15, 12, 30, 0, 0, time.UTC)
	id := idx.NewAt(at)

	require.WithinDuration(t, at, id.Time(), time.Millisecond)
	require.True(t, idx.Zero.Time().IsZero())
}
