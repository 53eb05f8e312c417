package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/atlaspack/internal/model"
)

// Solver packs a set of rectangles into a single bin. Implementations must be
// pure: the same request always yields the same verdict and no state is kept
// between calls. On success Placements has the same length and order as
// req.Sizes, placed rectangles do not overlap, and the bin is at most
// req.MaxSide on each side.
type Solver interface {
	Solve(req model.PackingRequest) (model.PackingResult, bool)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(req model.PackingRequest) (model.PackingResult, bool)

// Solve calls f(req).
func (f SolverFunc) Solve(req model.PackingRequest) (model.PackingResult, bool) {
	return f(req)
}

// ordering decides the insertion order tried by MaxRectsSolver.
type ordering func(a, b model.Size) bool

// orderings are tried in turn; the one giving the smallest bin wins.
var orderings = []ordering{
	func(a, b model.Size) bool { return a.Area() > b.Area() },
	func(a, b model.Size) bool { return max(a.W, a.H) > max(b.W, b.H) },
	func(a, b model.Size) bool { return a.W+a.H > b.W+b.H },
	func(a, b model.Size) bool { return a.H > b.H },
	func(a, b model.Size) bool { return a.W > b.W },
}

// MaxRectsSolver is the default Solver. It runs a maximal-rectangles packer
// with best-area-fit placement and searches for the smallest square bin that
// holds every rectangle, then trims the bin to the used extents.
type MaxRectsSolver struct{}

// NewSolver returns the default solver.
func NewSolver() MaxRectsSolver {
	return MaxRectsSolver{}
}

// Solve implements Solver.
func (MaxRectsSolver) Solve(req model.PackingRequest) (model.PackingResult, bool) {
	if len(req.Sizes) == 0 {
		return model.PackingResult{Placements: []model.Placement{}}, true
	}
	if req.MaxSide <= 0 || req.Padding < 0 {
		return model.PackingResult{}, false
	}

	pad := req.Padding
	limit := req.MaxSide + pad

	// Rectangles are inflated by the padding on their right and bottom edges.
	// The bin gets the same allowance so a rectangle touching the far edge
	// does not pay for padding it does not need.
	inflated := make([]model.Size, len(req.Sizes))
	totalArea := 0
	minSide := 0
	for i, s := range req.Sizes {
		if s.W <= 0 || s.H <= 0 {
			return model.PackingResult{}, false
		}
		in := model.Size{W: s.W + pad, H: s.H + pad}
		// Rotation does not help inside a square bin.
		if in.W > limit || in.H > limit {
			return model.PackingResult{}, false
		}
		inflated[i] = in
		totalArea += in.Area()
		minSide = max(minSide, in.W, in.H)
	}
	if totalArea > limit*limit {
		return model.PackingResult{}, false
	}

	best, ok := packSquare(inflated, limit, req.AllowFlip)
	if !ok {
		return model.PackingResult{}, false
	}

	// Binary search for a smaller square. Heuristic packing is not strictly
	// monotonic in the bin size, so only successful attempts are kept.
	lo := max(minSide, int(math.Ceil(math.Sqrt(float64(totalArea)))))
	hi := limit - 1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if res, ok := packSquare(inflated, mid, req.AllowFlip); ok {
			if res.BinWidth*res.BinHeight <= best.BinWidth*best.BinHeight {
				best = res
			}
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}

	return finishResult(best, req), true
}

// finishResult converts inflated extents into the real bin size.
func finishResult(res model.PackingResult, req model.PackingRequest) model.PackingResult {
	w, h := 0, 0
	for i, s := range req.Sizes {
		f := res.Frame(i, s)
		w = max(w, f.Right())
		h = max(h, f.Bottom())
	}
	if req.PowerOfTwo {
		w = min(model.NextPowerOfTwo(w), req.MaxSide)
		h = min(model.NextPowerOfTwo(h), req.MaxSide)
	}
	res.BinWidth = w
	res.BinHeight = h
	return res
}

// packSquare tries every ordering against a side x side bin and returns the
// tightest complete packing. BinWidth/BinHeight hold the inflated extents.
func packSquare(sizes []model.Size, side int, allowFlip bool) (model.PackingResult, bool) {
	var best model.PackingResult
	found := false

	for _, less := range orderings {
		order := make([]int, len(sizes))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return less(sizes[order[i]], sizes[order[j]])
		})

		res, ok := packOrdered(sizes, order, side, allowFlip)
		if !ok {
			continue
		}
		if !found || res.BinWidth*res.BinHeight < best.BinWidth*best.BinHeight {
			best = res
			found = true
		}
	}
	return best, found
}

// packOrdered inserts sizes in the given order. Placements are stored at the
// original index so the result stays positional.
func packOrdered(sizes []model.Size, order []int, side int, allowFlip bool) (model.PackingResult, bool) {
	bin := newMaxRectsBin(side, side)
	placements := make([]model.Placement, len(sizes))
	w, h := 0, 0

	for _, idx := range order {
		s := sizes[idx]
		x, y, flipped, ok := bin.insert(s.W, s.H, allowFlip)
		if !ok {
			return model.PackingResult{}, false
		}
		placements[idx] = model.Placement{X: x, Y: y, Flipped: flipped}
		if flipped {
			w = max(w, x+s.H)
			h = max(h, y+s.W)
		} else {
			w = max(w, x+s.W)
			h = max(h, y+s.H)
		}
	}

	return model.PackingResult{Placements: placements, BinWidth: w, BinHeight: h}, true
}

// maxRectsBin tracks the maximal free rectangles of one bin.
type maxRectsBin struct {
	freeRects []model.Rect
}

func newMaxRectsBin(width, height int) *maxRectsBin {
	return &maxRectsBin{
		freeRects: []model.Rect{{X: 0, Y: 0, W: width, H: height}},
	}
}

// fit scores a candidate position; lower is better.
type fit struct {
	idx       int
	areaFit   int
	shortSide int
}

func (f fit) better(o fit) bool {
	if f.idx < 0 {
		return false
	}
	if o.idx < 0 {
		return true
	}
	if f.areaFit != o.areaFit {
		return f.areaFit < o.areaFit
	}
	return f.shortSide < o.shortSide
}

// bestFit returns the best free rectangle for a w x h piece using the Best
// Area Fit heuristic, breaking ties on the shorter leftover side. idx is -1
// when nothing fits.
func (b *maxRectsBin) bestFit(w, h int) fit {
	best := fit{idx: -1}
	for i, r := range b.freeRects {
		if w > r.W || h > r.H {
			continue
		}
		cand := fit{
			idx:       i,
			areaFit:   r.W*r.H - w*h,
			shortSide: min(r.W-w, r.H-h),
		}
		if cand.better(best) {
			best = cand
		}
	}
	return best
}

// insert places a w x h piece, optionally rotated, and returns its position.
func (b *maxRectsBin) insert(w, h int, allowFlip bool) (x, y int, flipped, ok bool) {
	normal := b.bestFit(w, h)
	rotated := fit{idx: -1}
	if allowFlip && w != h {
		rotated = b.bestFit(h, w)
	}

	var chosen model.Rect
	switch {
	case rotated.better(normal):
		r := b.freeRects[rotated.idx]
		chosen = model.Rect{X: r.X, Y: r.Y, W: h, H: w}
		flipped = true
	case normal.idx >= 0:
		r := b.freeRects[normal.idx]
		chosen = model.Rect{X: r.X, Y: r.Y, W: w, H: h}
	default:
		return 0, 0, false, false
	}

	b.splitAroundPlacement(chosen)
	return chosen.X, chosen.Y, flipped, true
}

// splitAroundPlacement removes all free rects that overlap with the placed rect
// and generates maximal sub-rects from each overlap. Then prunes contained rects.
func (b *maxRectsBin) splitAroundPlacement(placed model.Rect) {
	var newRects []model.Rect

	for _, r := range b.freeRects {
		if !r.Overlaps(placed) {
			newRects = append(newRects, r)
			continue
		}

		// Left strip
		if placed.X > r.X {
			newRects = append(newRects, model.Rect{X: r.X, Y: r.Y, W: placed.X - r.X, H: r.H})
		}
		// Right strip
		if placed.Right() < r.Right() {
			newRects = append(newRects, model.Rect{X: placed.Right(), Y: r.Y, W: r.Right() - placed.Right(), H: r.H})
		}
		// Top strip
		if placed.Y > r.Y {
			newRects = append(newRects, model.Rect{X: r.X, Y: r.Y, W: r.W, H: placed.Y - r.Y})
		}
		// Bottom strip
		if placed.Bottom() < r.Bottom() {
			newRects = append(newRects, model.Rect{X: r.X, Y: placed.Bottom(), W: r.W, H: r.Bottom() - placed.Bottom()})
		}
	}

	b.freeRects = pruneContained(newRects)
}

// pruneContained removes any rect that is fully contained within another.
// Of two identical rects only the first is kept.
func pruneContained(rects []model.Rect) []model.Rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]model.Rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, c := range rects {
			if i == j || !containsRect(c, a) {
				continue
			}
			if a == c && j > i {
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

// containsRect returns true if outer fully contains inner.
func containsRect(outer, inner model.Rect) bool {
	return outer.X <= inner.X && outer.Y <= inner.Y &&
		outer.Right() >= inner.Right() && outer.Bottom() >= inner.Bottom()
}
