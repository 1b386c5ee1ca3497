package png

// Reverse filtering. Each scanline arrives as one filter-type byte
// followed by rowBytes of filtered data; reconstruction rewrites the
// buffer in place, dropping the filter bytes, so the result is a tightly
// packed raster of height*rowBytes bytes at the front of the input.

const (
	filterNone    = 0
	filterSub     = 1
	filterUp      = 2
	filterAverage = 3
	filterPaeth   = 4
)

// paethPredict picks whichever of left, above, upper-left is closest to
// left + above - upperLeft, ties resolved in that order.
func paethPredict(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// unfilter reconstructs height scanlines of rowBytes bytes each, reading
// from and writing into data. bpp is the filter offset distance in whole
// bytes. Returns the packed raster, which aliases the front of data.
//
// The write head always trails the read head by the number of filter
// bytes consumed so far, so the in-place compaction never overwrites
// bytes that are still to be read.
func unfilter(data []byte, rowBytes, height, bpp int) ([]byte, error) {
	if len(data) < height*(rowBytes+1) {
		return nil, decodeErr(BadPixelData, "raw image data is %d bytes, need %d for %d scanlines", len(data), height*(rowBytes+1), height)
	}

	src := 0
	dst := 0
	var prev []byte
	for y := 0; y < height; y++ {
		filterType := data[src]
		src++
		if filterType > filterPaeth {
			return nil, decodeErr(BadFilter, "scanline %d has filter type %d", y, filterType)
		}

		row := data[dst : dst+rowBytes]
		copy(row, data[src:src+rowBytes])
		src += rowBytes
		dst += rowBytes

		switch filterType {
		case filterNone:
		case filterSub:
			for x := bpp; x < rowBytes; x++ {
				row[x] += row[x-bpp]
			}
		case filterUp:
			if prev != nil {
				for x := 0; x < rowBytes; x++ {
					row[x] += prev[x]
				}
			}
		case filterAverage:
			for x := 0; x < rowBytes; x++ {
				var left, above int
				if x >= bpp {
					left = int(row[x-bpp])
				}
				if prev != nil {
					above = int(prev[x])
				}
				row[x] += byte((left + above) / 2)
			}
		case filterPaeth:
			for x := 0; x < rowBytes; x++ {
				var left, above, upperLeft byte
				if x >= bpp {
					left = row[x-bpp]
				}
				if prev != nil {
					above = prev[x]
					if x >= bpp {
						upperLeft = prev[x-bpp]
					}
				}
				row[x] += paethPredict(left, above, upperLeft)
			}
		}

		prev = row
	}

	return data[:height*rowBytes], nil
}
