package sourcemap

import "strings"

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeVLQ renders one signed integer as a base64 VLQ segment field.
// The sign bit occupies the lowest bit, continuation the sixth.
func encodeVLQ(n int) string {
	vlq := n << 1
	if n < 0 {
		vlq = (-n << 1) | 1
	}

	var sb strings.Builder
	for {
		digit := vlq & 0x1f
		vlq >>= 5
		if vlq > 0 {
			digit |= 0x20
		}
		sb.WriteByte(base64Alphabet[digit])
		if vlq == 0 {
			break
		}
	}
	return sb.String()
}

// encodeSegment renders one mapping segment from its field values.
func encodeSegment(fields ...int) string {
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(encodeVLQ(f))
	}
	return sb.String()
}
