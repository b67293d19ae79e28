package audio

// Assemble concatenates ordered per-chunk audio outputs into one binary
// stream. It performs no re-encoding and no re-ordering; chunk order is
// the caller's responsibility.
func Assemble(chunks [][]byte) []byte {
	var total int
	for _, chunk := range chunks {
		total += len(chunk)
	}

	assembled := make([]byte, 0, total)
	for _, chunk := range chunks {
		assembled = append(assembled, chunk...)
	}

	return assembled
}
