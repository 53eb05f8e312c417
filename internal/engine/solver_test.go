package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/atlaspack/internal/model"
)

func request(maxSide int, allowFlip bool, sizes ...model.Size) model.PackingRequest {
	return model.PackingRequest{Sizes: sizes, MaxSide: maxSide, AllowFlip: allowFlip}
}

func sz(w, h int) model.Size {
	return model.Size{W: w, H: h}
}

// assertValidPacking checks the solver contract for a successful result.
func assertValidPacking(t *testing.T, req model.PackingRequest, res model.PackingResult) {
	t.Helper()
	require.Len(t, res.Placements, len(req.Sizes))
	assert.LessOrEqual(t, res.BinWidth, req.MaxSide)
	assert.LessOrEqual(t, res.BinHeight, req.MaxSide)

	frames := make([]model.Rect, len(req.Sizes))
	for i, s := range req.Sizes {
		f := res.Frame(i, s)
		if !req.AllowFlip {
			assert.False(t, res.Placements[i].Flipped, "rect %d flipped without permission", i)
		}
		assert.True(t, f.Within(res.BinWidth, res.BinHeight), "rect %d %+v outside %dx%d", i, f, res.BinWidth, res.BinHeight)
		for j := 0; j < i; j++ {
			padded := model.Rect{X: f.X, Y: f.Y, W: f.W + req.Padding, H: f.H + req.Padding}
			other := model.Rect{X: frames[j].X, Y: frames[j].Y, W: frames[j].W + req.Padding, H: frames[j].H + req.Padding}
			assert.False(t, padded.Overlaps(other), "rect %d overlaps rect %d", i, j)
		}
		frames[i] = f
	}
}

func TestSolve_Empty(t *testing.T) {
	res, ok := NewSolver().Solve(request(64, true))
	assert.True(t, ok)
	assert.Empty(t, res.Placements)
}

func TestSolve_SingleFullSizeImage(t *testing.T) {
	req := request(2048, false, sz(2048, 2048))
	res, ok := NewSolver().Solve(req)
	require.True(t, ok)
	assertValidPacking(t, req, res)
	assert.Equal(t, 2048, res.BinWidth)
	assert.Equal(t, 2048, res.BinHeight)
}

func TestSolve_TrimsBinToExtents(t *testing.T) {
	req := request(256, true, sz(100, 100), sz(100, 100), sz(100, 100))
	res, ok := NewSolver().Solve(req)
	require.True(t, ok)
	assertValidPacking(t, req, res)
	// Three squares need at least 200 on the long side and 100 on the short.
	assert.GreaterOrEqual(t, max(res.BinWidth, res.BinHeight), 200)
	assert.GreaterOrEqual(t, min(res.BinWidth, res.BinHeight), 100)
	assert.LessOrEqual(t, res.BinWidth*res.BinHeight, 200*200)
}

func TestSolve_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  model.PackingRequest
	}{
		{"too wide", request(64, true, sz(65, 1))},
		{"too much area", request(10, true, sz(10, 10), sz(1, 1))},
		{"zero size", request(64, true, sz(0, 5))},
		{"no max side", request(0, true, sz(1, 1))},
		{"negative padding", model.PackingRequest{Sizes: []model.Size{sz(1, 1)}, MaxSide: 4, Padding: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := NewSolver().Solve(tt.req)
			assert.False(t, ok)
		})
	}
}

func TestSolve_FlipNeeded(t *testing.T) {
	// A 4x4 bin holds a 4x3 slab and a 1x4 strip only if the strip can
	// lie down or the slab can stand up.
	sizes := []model.Size{sz(4, 3), sz(4, 1)}

	res, ok := NewSolver().Solve(request(4, true, sizes...))
	require.True(t, ok)
	assertValidPacking(t, request(4, true, sizes...), res)

	// Without flipping the same pieces still fit stacked.
	res, ok = NewSolver().Solve(request(4, false, sizes...))
	require.True(t, ok)
	assertValidPacking(t, request(4, false, sizes...), res)

	// A 1x4 strip next to a 4x3 slab only fits when it may rotate.
	_, ok = NewSolver().Solve(request(4, false, sz(4, 3), sz(1, 4)))
	assert.False(t, ok)
	res, ok = NewSolver().Solve(request(4, true, sz(4, 3), sz(1, 4)))
	require.True(t, ok)
	assert.True(t, res.Placements[1].Flipped || res.Placements[0].Flipped)
}

func TestSolve_Padding(t *testing.T) {
	req := model.PackingRequest{Sizes: []model.Size{sz(10, 10), sz(10, 10)}, MaxSide: 64, Padding: 2}
	res, ok := NewSolver().Solve(req)
	require.True(t, ok)
	assertValidPacking(t, req, res)
	// Two 10px squares with a 2px gap and no trailing padding.
	assert.Equal(t, 22, max(res.BinWidth, res.BinHeight))
	assert.Equal(t, 10, min(res.BinWidth, res.BinHeight))
}

func TestSolve_PaddingDoesNotRejectFullSizeImage(t *testing.T) {
	req := model.PackingRequest{Sizes: []model.Size{sz(32, 32)}, MaxSide: 32, Padding: 4}
	res, ok := NewSolver().Solve(req)
	require.True(t, ok)
	assert.Equal(t, 32, res.BinWidth)
	assert.Equal(t, 32, res.BinHeight)
}

func TestSolve_PowerOfTwo(t *testing.T) {
	req := model.PackingRequest{Sizes: []model.Size{sz(100, 30)}, MaxSide: 256, PowerOfTwo: true}
	res, ok := NewSolver().Solve(req)
	require.True(t, ok)
	assertValidPacking(t, req, res)
	assert.True(t, model.IsPowerOfTwo(res.BinWidth))
	assert.True(t, model.IsPowerOfTwo(res.BinHeight))
	assert.LessOrEqual(t, res.BinWidth*res.BinHeight, 128*32)
}

func TestSolve_Deterministic(t *testing.T) {
	req := request(128, true, sz(30, 20), sz(12, 50), sz(40, 40), sz(7, 7), sz(64, 10))
	a, okA := NewSolver().Solve(req)
	b, okB := NewSolver().Solve(req)
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, a, b)
}

func TestSolve_RandomSetsAreValid(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(25)
		sizes := make([]model.Size, n)
		for i := range sizes {
			sizes[i] = sz(1+rng.Intn(40), 1+rng.Intn(40))
		}
		req := model.PackingRequest{
			Sizes:     sizes,
			MaxSide:   128,
			AllowFlip: round%2 == 0,
			Padding:   round % 3,
		}
		res, ok := NewSolver().Solve(req)
		if !ok {
			continue
		}
		assertValidPacking(t, req, res)
	}
}

func TestPruneContained(t *testing.T) {
	rects := []model.Rect{
		{X: 0, Y: 0, W: 10, H: 10},
		{X: 2, Y: 2, W: 3, H: 3},
		{X: 0, Y: 0, W: 10, H: 10},
		{X: 5, Y: 5, W: 10, H: 2},
	}
	got := pruneContained(rects)
	assert.Equal(t, []model.Rect{{X: 0, Y: 0, W: 10, H: 10}, {X: 5, Y: 5, W: 10, H: 2}}, got)
}

func TestMaxRectsBin_Insert(t *testing.T) {
	bin := newMaxRectsBin(10, 10)

	x, y, flipped, ok := bin.insert(10, 4, false)
	require.True(t, ok)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
	assert.False(t, flipped)

	x, y, _, ok = bin.insert(10, 6, false)
	require.True(t, ok)
	assert.Equal(t, 0, x)
	assert.Equal(t, 4, y)

	_, _, _, ok = bin.insert(1, 1, true)
	assert.False(t, ok, "bin should be full")
}
