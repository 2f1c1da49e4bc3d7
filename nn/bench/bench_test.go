package bench

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digitnet/tensor"
)

func TestRunPoint(t *testing.T) {
	for _, c := range []Case{
		{Layers: []int{6, 4, 3}, Workers: 0, Iters: 3, Warmup: 1, Seed: 2},
		{Layers: []int{6, 4, 3}, Workers: 2, Iters: 3, Warmup: 1, Seed: 2},
		{Layers: []int{6, 4, 3}, Workers: 2, Pool: true, Iters: 3, Seed: 2},
	} {
		p, err := RunPoint(c)
		require.NoError(t, err)

		assert.Equal(t, "6-4-3", p.Arch)
		assert.Equal(t, c.Workers, p.Workers)
		assert.Equal(t, c.Pool, p.Pool)
		assert.Greater(t, p.Train, time.Duration(0))
		assert.Greater(t, p.Query, time.Duration(0))
		assert.Equal(t, c.Iters+c.Warmup, p.Stats["nn.Train"].Count)
		assert.Equal(t, c.Iters, p.Stats["nn.Query"].Count)
	}
}

func TestRunPointRejectsBadCases(t *testing.T) {
	_, err := RunPoint(Case{Layers: []int{4, 2}})
	assert.Error(t, err)

	_, err = RunPoint(Case{Layers: []int{4}, Iters: 1})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestParseInts(t *testing.T) {
	got, err := ParseInts("0, 1,2,,4")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 4}, got)

	got, err = ParseInts("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseInts("1,x")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	points := []Point{
		{Arch: "4-2", Workers: 0, Train: 1500 * time.Nanosecond, Query: time.Microsecond},
		{Arch: "4-2", Workers: 2, Pool: true, Train: 2 * time.Microsecond, Query: 500 * time.Nanosecond},
	}
	require.NoError(t, WriteCSV(&buf, points))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"4-2", "0", "false", "1.500", "1.000"}, rows[1])
	assert.Equal(t, []string{"4-2", "2", "true", "2.000", "0.500"}, rows[2])
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.csv")
	points := []Point{{Arch: "4-2", Workers: 1, Train: time.Microsecond, Query: time.Microsecond}}
	require.NoError(t, SaveCSV(path, points))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "arch,workers,pool,train_us,query_us\n4-2,1,false,1.000,1.000\n", string(data))

	err = SaveCSV(filepath.Join(t.TempDir(), "missing", "bench.csv"), points)
	assert.Error(t, err)
}
