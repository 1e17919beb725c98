package chip8

// DisplaySink receives pixel changes of the framebuffer.
type DisplaySink interface {
	// SetPixel is called for every pixel toggled by a draw.
	SetPixel(x, y int, on bool)
	// Clear is called when the screen is cleared.
	Clear()
}

// Framebuffer is the 64x32 monochrome screen, indexed by row then column.
type Framebuffer [DisplayHeight][DisplayWidth]bool

// Pixel returns whether the pixel at the given coordinates is lit.
// Coordinates wrap around the screen edges.
func (f *Framebuffer) Pixel(x, y int) bool {
	return f[wrap(y, DisplayHeight)][wrap(x, DisplayWidth)]
}

// LitPixels returns the number of lit pixels.
func (f *Framebuffer) LitPixels() int {
	count := 0
	for y := range f {
		for x := range f[y] {
			if f[y][x] {
				count++
			}
		}
	}
	return count
}

func (f *Framebuffer) clear() {
	*f = Framebuffer{}
}

// draw XORs the sprite rows onto the framebuffer with the top left corner at
// (x0, y0). Every toggled pixel is passed to the set callback. The returned
// value reports whether any drawn pixel was already lit.
func (f *Framebuffer) draw(x0, y0 int, sprite []byte, set func(x, y int, on bool)) bool {
	x0 = wrap(x0, DisplayWidth)
	y0 = wrap(y0, DisplayHeight)
	collision := false

	for row, b := range sprite {
		y := (y0 + row) % DisplayHeight
		for col := 0; col < 8; col++ {
			if b&(0x80>>col) == 0 {
				continue
			}
			x := (x0 + col) % DisplayWidth
			if f[y][x] {
				collision = true
			}
			f[y][x] = !f[y][x]
			if set != nil {
				set(x, y, f[y][x])
			}
		}
	}
	return collision
}

func wrap(value, size int) int {
	value %= size
	if value < 0 {
		value += size
	}
	return value
}
