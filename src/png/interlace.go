package png

// Adam7 splits the image into seven passes of progressively finer grids.
// Pass p covers pixels (xStart + i*xDelta, yStart + j*yDelta).
type interlacePass struct {
	xStart, yStart int
	xDelta, yDelta int
}

var adam7Passes = [7]interlacePass{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

// passExtent is the pixel width and height of one Adam7 pass for an image
// of the header's dimensions. Either can be zero for small images, in
// which case the pass contributes no scanlines at all.
func (p interlacePass) passExtent(width, height uint32) (int, int) {
	w := (int(width) - p.xStart + p.xDelta - 1) / p.xDelta
	h := (int(height) - p.yStart + p.yDelta - 1) / p.yDelta
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

// expectedRawSize is the exact byte length the inflated IDAT stream must
// have: one filter byte plus rowBytes per scanline, summed over every
// scanline the image's layout produces.
func expectedRawSize(h *Header) int {
	if h.Interlace == interlaceNone {
		return int(h.Height) * (1 + h.rowBytes(int(h.Width)))
	}
	total := 0
	for _, p := range adam7Passes {
		w, rows := p.passExtent(h.Width, h.Height)
		if w == 0 || rows == 0 {
			continue
		}
		total += rows * (1 + h.rowBytes(w))
	}
	return total
}
