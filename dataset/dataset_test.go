package dataset_test

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chanhou/megaman/dataset"
	"github.com/chanhou/megaman/matrix"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := "x,y\n# comment\n1, 2\n3.5,-4e-1\n"
	d, err := dataset.ReadCSV(strings.NewReader(in), dataset.CSVOptions{Header: true})
	require.NoError(t, err)
	require.Equal(t, 2, d.Rows())
	require.Equal(t, []float64{1, 2, 3.5, -0.4}, d.RawData())
}

func TestReadCSVErrors(t *testing.T) {
	_, err := dataset.ReadCSV(strings.NewReader("1,2\n3\n"), dataset.CSVOptions{})
	require.ErrorIs(t, err, dataset.ErrRagged)

	_, err = dataset.ReadCSV(strings.NewReader("x,y\n"), dataset.CSVOptions{Header: true})
	require.ErrorIs(t, err, dataset.ErrEmpty)

	_, err = dataset.ReadCSV(strings.NewReader("1,abc\n"), dataset.CSVOptions{})
	require.Error(t, err)
}

func TestCSVRoundTripWithSeparator(t *testing.T) {
	m, err := matrix.NewDenseRows([][]float64{{0.1, 2}, {3, 1e-9}})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, dataset.WriteCSV(&buf, m, []string{"a", "b"}))
	require.True(t, strings.HasPrefix(buf.String(), "a,b\n"))

	semi := strings.ReplaceAll(buf.String(), ",", ";")
	got, err := dataset.ReadCSV(strings.NewReader(semi), dataset.CSVOptions{Header: true, Comma: ';'})
	require.NoError(t, err)
	require.Equal(t, m.RawData(), got.RawData())
}

func TestParquetAndLoad(t *testing.T) {
	dir := t.TempDir()
	m, _, err := dataset.SwissRoll(50, 0.1, 1)
	require.NoError(t, err)

	for _, name := range []string{"roll.parquet", "roll.csv"} {
		path := filepath.Join(dir, name)
		require.NoError(t, dataset.Save(path, m))
		got, err := dataset.Load(path, false)
		require.NoError(t, err, name)
		require.Equal(t, m.RawData(), got.RawData(), name)
	}

	_, err = dataset.Load(filepath.Join(dir, "roll.txt"), false)
	require.ErrorIs(t, err, dataset.ErrUnknownFormat)
	require.ErrorIs(t, dataset.Save(filepath.Join(dir, "x.json"), m), dataset.ErrUnknownFormat)
}

func TestSwissRoll(t *testing.T) {
	a, ts, err := dataset.SwissRoll(100, 0, 7)
	require.NoError(t, err)
	b, _, err := dataset.SwissRoll(100, 0, 7)
	require.NoError(t, err)
	require.Equal(t, a.RawData(), b.RawData())
	require.Len(t, ts, 100)

	for i, tt := range ts {
		require.GreaterOrEqual(t, tt, 1.5*math.Pi)
		require.LessOrEqual(t, tt, 4.5*math.Pi)
		row, err := a.Row(i)
		require.NoError(t, err)
		require.InDelta(t, tt, math.Hypot(row[0], row[2]), 1e-9)
	}

	_, _, err = dataset.SwissRoll(0, 0, 1)
	require.ErrorIs(t, err, dataset.ErrEmpty)
}

func TestGrid(t *testing.T) {
	g, err := dataset.Grid(2, 3, 0.5)
	require.NoError(t, err)
	require.Equal(t, 6, g.Rows())
	row, err := g.Row(5)
	require.NoError(t, err)
	require.Equal(t, []float64{0.5, 1}, row)

	_, err = dataset.Grid(0, 3, 1)
	require.ErrorIs(t, err, dataset.ErrEmpty)
}
