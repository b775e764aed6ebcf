package codec

import "fmt"

// Array lengths on the wire are compact-u16: 7 bits per byte, low bits first,
// high bit set on every byte but the last.

func appendCompactU16(out []byte, n int) []byte {
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func readCompactU16(b []byte) (int, int, error) {
	var v int
	for i := 0; i < 3; i++ {
		if i >= len(b) {
			return 0, 0, fmt.Errorf("compact-u16: truncated")
		}
		c := b[i]
		v |= int(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			if v > 0xffff {
				return 0, 0, fmt.Errorf("compact-u16: overflow")
			}
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("compact-u16: too long")
}
