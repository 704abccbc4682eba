package conv

// U8Bin writes the 8-digit binary form of n, most significant bit first.
func U8Bin(buf []byte, n uint8) []byte {
	if len(buf) < 8 {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < 8; j++ {
		i--
		buf[i] = '0' + n&1
		n >>= 1
	}
	return buf[i:]
}
