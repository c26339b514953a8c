package tt_test

import (
	"sync"
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeRoundsDownToPowerOfTwo(t *testing.T) {
	table, err := tt.New(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, table.Len()&(table.Len()-1), 0, "capacity must be a power of two")

	// A budget that doesn't divide evenly still rounds down, never up.
	odd, err := tt.New((1 << 20) + 123)
	require.NoError(t, err)
	assert.LessOrEqual(t, odd.SizeBytes(), uint64((1<<20)+123))
}

func TestProbeMiss(t *testing.T) {
	table, err := tt.New(1 << 16)
	require.NoError(t, err)

	_, _, _, _, ok := table.Probe(board.Hash(0xdeadbeef))
	assert.False(t, ok)
}

func TestStoreProbeRoundTrip(t *testing.T) {
	table, err := tt.New(1 << 16)
	require.NoError(t, err)

	hash := board.Hash(12345)
	move := board.Move{From: board.G4, To: board.G8, Promotion: board.Queen}
	table.Store(hash, eval.Score(214), 5, tt.Exact, move)

	score, depth, bound, got, ok := table.Probe(hash)
	require.True(t, ok)
	assert.Equal(t, eval.Score(214), score)
	assert.Equal(t, 5, depth)
	assert.Equal(t, tt.Exact, bound)
	assert.Equal(t, move, got)
}

func TestStoreIsDepthPreferred(t *testing.T) {
	table, err := tt.New(1 << 16)
	require.NoError(t, err)

	hash := board.Hash(777)
	table.Store(hash, eval.Score(10), 6, tt.Lower, board.Move{})

	// A shallower store for the same key must not displace the deeper entry.
	table.Store(hash, eval.Score(99), 2, tt.Upper, board.Move{})
	score, depth, bound, _, ok := table.Probe(hash)
	require.True(t, ok)
	assert.Equal(t, eval.Score(10), score)
	assert.Equal(t, 6, depth)
	assert.Equal(t, tt.Lower, bound)

	// A deeper or equal store for the same key replaces it.
	table.Store(hash, eval.Score(42), 6, tt.Exact, board.Move{})
	score, depth, bound, _, ok = table.Probe(hash)
	require.True(t, ok)
	assert.Equal(t, eval.Score(42), score)
	assert.Equal(t, tt.Exact, bound)
}

func TestClearResetsEveryEntry(t *testing.T) {
	table, err := tt.New(1 << 16)
	require.NoError(t, err)

	for i := 0; i < 64; i++ {
		table.Store(board.Hash(i), eval.Score(i), 1, tt.Exact, board.Move{})
	}
	table.Clear()
	for i := 0; i < 64; i++ {
		_, _, _, _, ok := table.Probe(board.Hash(i))
		assert.False(t, ok)
	}
}

// TestConcurrentProbeNeverMixesKeys hammers the table from many goroutines
// writing distinct keys and reading back concurrently, per spec.md §8: "no
// probe ever returns a value decoded from a key other than the probing key."
// A torn read (mismatched key/data halves) must surface as a miss, never as
// a value belonging to someone else's key.
func TestConcurrentProbeNeverMixesKeys(t *testing.T) {
	table, err := tt.New(1 << 14)
	require.NoError(t, err)

	const goroutines = 16
	const iterations = 2000

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				hash := board.Hash(g*iterations + i)
				table.Store(hash, eval.Score(g), 4, tt.Exact, board.Move{})

				if score, _, _, _, ok := table.Probe(hash); ok {
					assert.Equal(t, eval.Score(g), score, "probe for a key returned another writer's data")
				}
			}
		}()
	}
	wg.Wait()
}
