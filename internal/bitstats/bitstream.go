package bitstats

import "math/bits"

// BitStream is a read-only view of a byte sample as a sequence of bits.
// Bits are ordered most significant first within each byte, so bit 0 of the
// stream is the top bit of the first byte.
//
// The bits are never materialised; every accessor works directly on the bytes.
type BitStream struct {
	data []byte
}

// NewBitStream returns a BitStream over data. The caller must not modify data
// while the stream is in use.
func NewBitStream(data []byte) BitStream {
	return BitStream{data: data}
}

// Len returns the number of bits in the stream (8 * number of bytes).
func (s BitStream) Len() int {
	return len(s.data) * 8
}

// Bit returns bit i of the stream as 0 or 1.
func (s BitStream) Bit(i int) uint8 {
	return (s.data[i>>3] >> (7 - uint(i&7))) & 1
}

// Ones returns the number of set bits in the stream.
func (s BitStream) Ones() int {
	n := 0
	for _, b := range s.data {
		n += bits.OnesCount8(b)
	}
	return n
}

// Runs returns the number of maximal blocks of identical adjacent bits.
// An empty stream has no runs.
func (s BitStream) Runs() int {
	n := s.Len()
	if n == 0 {
		return 0
	}
	runs := 1
	prev := s.Bit(0)
	for i := 1; i < n; i++ {
		bit := s.Bit(i)
		if bit != prev {
			runs++
			prev = bit
		}
	}
	return runs
}

// LongestRun returns the length of the longest run of identical bits
// (zeros or ones) in the whole stream. Runs continue across byte boundaries.
func (s BitStream) LongestRun() int {
	n := s.Len()
	if n == 0 {
		return 0
	}
	longest, current := 1, 1
	prev := s.Bit(0)
	for i := 1; i < n; i++ {
		bit := s.Bit(i)
		if bit == prev {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
			prev = bit
		}
	}
	return longest
}

// LongestOnesRun returns the length of the longest run of ones in bits
// [start, end) of the stream.
func (s BitStream) LongestOnesRun(start, end int) int {
	longest, current := 0, 0
	for i := start; i < end; i++ {
		if s.Bit(i) == 1 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

// Pairs counts the overlapping two-bit windows (bit i, bit i+1) for every i in
// [0, Len()-1). The index of the result is the pattern value: 0b00, 0b01,
// 0b10 and 0b11. A stream shorter than two bits yields all zero counts.
func (s BitStream) Pairs() [4]int {
	var counts [4]int
	n := s.Len()
	if n < 2 {
		return counts
	}
	prev := s.Bit(0)
	for i := 1; i < n; i++ {
		bit := s.Bit(i)
		counts[prev<<1|bit]++
		prev = bit
	}
	return counts
}
