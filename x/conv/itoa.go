package conv

// Utoa writes the decimal form of u right-aligned into buf and returns the
// written tail. A 20-byte buf holds any uint64.
func Utoa(buf []byte, u uint64) []byte {
	i := len(buf)
	for i > 0 {
		i--
		buf[i] = '0' + byte(u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	return buf[i:]
}

// Itoa is Utoa with a leading '-' for negative n. Use a 21-byte buf for any
// int64. Output is truncated to the low-order digits when buf is short.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	if len(buf) == 0 {
		return buf
	}
	s := Utoa(buf[1:], uint64(-(n + 1))+1)
	start := len(buf) - len(s) - 1
	buf[start] = '-'
	return buf[start:]
}
