package params_test

import (
	"testing"

	"github.com/chanhou/megaman/params"
	"github.com/stretchr/testify/require"
)

func TestMergeIsSticky(t *testing.T) {
	stage := params.Params{"radius": 1.5, "n_neighbors": 8}
	merged := stage.Merge(params.Params{"radius": 2.0}, nil)

	require.Equal(t, 2.0, merged["radius"])
	require.Equal(t, 8, merged["n_neighbors"])
	require.Equal(t, 1.5, stage["radius"], "receiver must not change")

	var empty params.Params
	require.NotNil(t, empty.Merge())
	require.True(t, empty.Equal(params.Params{}))
}

func TestEqual(t *testing.T) {
	a := params.Params{"radius": 1.0, "symmetrize": true}
	require.True(t, a.Equal(a.Clone()))
	require.False(t, a.Equal(params.Params{"radius": 1.0}))
	require.False(t, a.Equal(params.Params{"radius": 1, "symmetrize": true}), "int and float differ")
}

func TestTypedReaders(t *testing.T) {
	p := params.Params{
		"radius":      2,
		"n_neighbors": 5.0,
		"symmetrize":  false,
		"method":      "brute",
		"bad":         "x",
	}

	f, err := p.Float("radius", 1.5)
	require.NoError(t, err)
	require.Equal(t, 2.0, f)

	f, err = p.Float("missing", 1.5)
	require.NoError(t, err)
	require.Equal(t, 1.5, f)

	n, err := p.Int("n_neighbors", 0)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	b, err := p.Bool("symmetrize", true)
	require.NoError(t, err)
	require.False(t, b)

	s, err := p.String("method", "auto")
	require.NoError(t, err)
	require.Equal(t, "brute", s)

	_, err = p.Float("bad", 0)
	require.ErrorIs(t, err, params.ErrBadParam)
	_, err = p.Int("radius", 0)
	require.NoError(t, err)
	_, err = params.Params{"k": 2.5}.Int("k", 0)
	require.ErrorIs(t, err, params.ErrBadParam)
	_, err = p.Bool("method", false)
	require.ErrorIs(t, err, params.ErrBadParam)
	require.True(t, p.Has("bad"))
	require.False(t, p.Has("nope"))
}
