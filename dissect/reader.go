package dissect

// BitReader reads a tagpro.eu event payload one bit at a time,
// most significant bit first. Reads past the end of the payload
// return zero bits; the encoder omits trailing zero frames.
type BitReader struct {
	data []byte
	pos  int
}

func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

// Pos returns the offset of the next bit to be read.
func (r *BitReader) Pos() int {
	return r.pos
}

// Len returns the payload length in bits.
func (r *BitReader) Len() int {
	return len(r.data) << 3
}

// End reports whether every bit of the payload has been consumed.
func (r *BitReader) End() bool {
	return r.pos>>3 >= len(r.data)
}

// Bit returns the next bit and advances the cursor, even past the end.
func (r *BitReader) Bit() uint {
	var b uint
	if !r.End() {
		b = uint(r.data[r.pos>>3]>>(7-(r.pos&7))) & 1
	}
	r.pos++
	return b
}

func (r *BitReader) Bool() bool {
	return r.Bit() == 1
}

// Fixed reads an n bit unsigned integer.
func (r *BitReader) Fixed(n int) int {
	result := 0
	for ; n > 0; n-- {
		result = result<<1 | int(r.Bit())
	}
	return result
}

// Tally reads a unary count: one bits terminated by a zero bit.
func (r *BitReader) Tally() int {
	result := 0
	for r.Bool() {
		result++
	}
	return result
}

// Footer reads the byte aligned variable width integer that ends every frame.
// A 2 bit class selects 0, 1, 2 or 3 whole bytes on top of the bits left
// before the next byte boundary. Each wider class is biased past the values
// a narrower class can already express.
func (r *BitReader) Footer() int {
	bits := r.Fixed(2) << 3
	free := (8 - (r.pos & 7)) & 7
	bits |= free
	minimum := 0
	for free < bits {
		minimum += 1 << free
		free += 8
	}
	return r.Fixed(bits) + minimum
}
