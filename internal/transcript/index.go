package transcript

// Range is the character interval a single subtitle occupies in its episode's
// transcript index.
type Range struct {
	Begin int
	End   int
}

// BuildIndex concatenates the normalized form of each subtitle text in id
// order and records the running character range each one occupies. Ranges are
// contiguous and non-overlapping; a subtitle whose text normalizes to nothing
// gets a zero-width range. The build is deterministic for a given input, so
// the index can always be rebuilt from the subtitle set.
func BuildIndex(texts []string) (string, []Range) {
	var b []byte
	ranges := make([]Range, 0, len(texts))
	offset := 0
	for _, text := range texts {
		normalized := Normalize(text)
		ranges = append(ranges, Range{Begin: offset, End: offset + len(normalized)})
		b = append(b, normalized...)
		offset += len(normalized)
	}
	return string(b), ranges
}
