package products

// Gallery tracks the cursor of a product's image viewer. Navigation is
// clamped at both ends; there is no wraparound. Indicator and thumbnail
// highlighting derive from Index, so they can never drift out of sync.
type Gallery struct {
	total int
	index int
}

// NewGallery returns a gallery over total images, positioned at the first.
func NewGallery(total int) *Gallery {
	if total < 0 {
		total = 0
	}
	return &Gallery{total: total}
}

// Len reports the number of images.
func (g *Gallery) Len() int { return g.total }

// Index reports the current position.
func (g *Gallery) Index() int { return g.index }

// CanPrev reports whether a previous image exists.
func (g *Gallery) CanPrev() bool { return g.index > 0 }

// CanNext reports whether a next image exists.
func (g *Gallery) CanNext() bool { return g.index < g.total-1 }

// Prev moves back one image, reporting whether the cursor moved.
func (g *Gallery) Prev() bool {
	if !g.CanPrev() {
		return false
	}
	g.index--
	return true
}

// Next advances one image, reporting whether the cursor moved.
func (g *Gallery) Next() bool {
	if !g.CanNext() {
		return false
	}
	g.index++
	return true
}

// Select jumps to index i, reporting whether i was in range.
func (g *Gallery) Select(i int) bool {
	if i < 0 || i >= g.total {
		return false
	}
	g.index = i
	return true
}
