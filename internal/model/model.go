package model

import (
	"image"

	"github.com/google/uuid"
)

// Size is a width/height pair in pixels.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Area returns W*H.
func (s Size) Area() int {
	return s.W * s.H
}

// Rect is an axis-aligned rectangle in page-local pixel coordinates.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Overlaps reports whether r and o share any pixel. Touching edges do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Within reports whether r lies entirely inside a w x h area anchored at the origin.
func (r Rect) Within(w, h int) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= w && r.Bottom() <= h
}

// SourceImage is one input image. It is immutable once loaded and is only
// ever read by the packing pipeline.
type SourceImage struct {
	Name   string      // Identity, unique within a build
	Width  int         // Pixels
	Height int         // Pixels
	Image  image.Image // Decoded pixel surface
}

// NewSourceImage wraps a decoded image. An empty name is replaced with a
// generated identifier.
func NewSourceImage(name string, img image.Image) SourceImage {
	if name == "" {
		name = NewImageID()
	}
	b := img.Bounds()
	return SourceImage{
		Name:   name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Image:  img,
	}
}

// NewImageID returns a short generated identity for unnamed images.
func NewImageID() string {
	return "image-" + uuid.New().String()[:8]
}

// Size returns the image dimensions.
func (s SourceImage) Size() Size {
	return Size{W: s.Width, H: s.Height}
}

// Area returns Width*Height.
func (s SourceImage) Area() int {
	return s.Width * s.Height
}

// PackingRequest is the input of one Solver call. It is built fresh for each call.
type PackingRequest struct {
	Sizes     []Size // One per candidate image, in candidate order
	MaxSide   int    // Bin side ceiling
	AllowFlip bool   // Permit 90 degree rotation
	Padding   int    // Empty pixels between neighbouring rectangles

	PowerOfTwo bool // Round the resulting bin up to powers of two
}

// Placement is where a single rectangle landed. Flipped rectangles occupy
// H x W instead of W x H.
type Placement struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Flipped bool `json:"flipped"`
}

// PackingResult is a successful Solver verdict. Placements[i] belongs to
// request.Sizes[i].
type PackingResult struct {
	Placements []Placement `json:"placements"`
	BinWidth   int         `json:"bin_width"`
	BinHeight  int         `json:"bin_height"`
}

// Frame returns the occupied rectangle for placement i of a rectangle with size s.
func (r PackingResult) Frame(i int, s Size) Rect {
	p := r.Placements[i]
	if p.Flipped {
		return Rect{X: p.X, Y: p.Y, W: s.H, H: s.W}
	}
	return Rect{X: p.X, Y: p.Y, W: s.W, H: s.H}
}

// SubImageDescription is the per-image metadata emitted for a page. The field
// names follow the common JSON-hash sprite atlas layout.
type SubImageDescription struct {
	Frame            Rect `json:"frame"`
	Rotated          bool `json:"rotated"`
	Trimmed          bool `json:"trimmed"` // Always false, images are never cropped
	SpriteSourceSize Rect `json:"spriteSourceSize"`
	SourceSize       Size `json:"sourceSize"`
}

// NewSubImageDescription describes an image of the given source size drawn
// into frame. No trimming is applied so SpriteSourceSize mirrors Frame.
func NewSubImageDescription(frame Rect, rotated bool, source Size) SubImageDescription {
	return SubImageDescription{
		Frame:            frame,
		Rotated:          rotated,
		Trimmed:          false,
		SpriteSourceSize: frame,
		SourceSize:       source,
	}
}

// Page is one composite sheet of the atlas.
type Page struct {
	Index  int                            // Zero-based page number
	Image  *image.NRGBA                   // Composite surface, Width x Height
	Width  int                            // Bin width
	Height int                            // Bin height
	Frames map[string]SubImageDescription // Keyed by SourceImage.Name
	Order  []string                       // Names in the order they were drawn
}

// UsedArea returns the total area covered by frames.
func (p Page) UsedArea() int {
	total := 0
	for _, f := range p.Frames {
		total += f.Frame.W * f.Frame.H
	}
	return total
}

// TotalArea returns the page area.
func (p Page) TotalArea() int {
	return p.Width * p.Height
}

// Efficiency returns the usage percentage.
func (p Page) Efficiency() float64 {
	ta := p.TotalArea()
	if ta == 0 {
		return 0
	}
	return float64(p.UsedArea()) / float64(ta) * 100.0
}

// BuildStats counts allocator work for one build.
type BuildStats struct {
	SolverCalls int `json:"solver_calls"`
	Retries     int `json:"retries"` // Failed attempts that dropped an image
	Pages       int `json:"pages"`
}

// BuildResult holds the full atlas.
type BuildResult struct {
	Pages    []Page        // In creation order
	Rejected []SourceImage // Images excluded for exceeding MaxSize
	Stats    BuildStats
}

// ImageCount returns the number of images placed across all pages.
func (br BuildResult) ImageCount() int {
	total := 0
	for _, p := range br.Pages {
		total += len(p.Frames)
	}
	return total
}

// TotalEfficiency returns overall page usage percentage.
func (br BuildResult) TotalEfficiency() float64 {
	var used, total int
	for _, p := range br.Pages {
		used += p.UsedArea()
		total += p.TotalArea()
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100.0
}
