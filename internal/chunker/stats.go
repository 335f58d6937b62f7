package chunker

const (
	smallChunkMax = 200
	largeChunkMin = 400
)

// SizeDistribution buckets chunks by character count.
type SizeDistribution struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

// Stats summarizes a chunk sequence.
type Stats struct {
	TotalChunks  int              `json:"total_chunks"`
	TotalChars   int              `json:"total_characters"`
	TotalWords   int              `json:"total_words"`
	AvgChunkSize int              `json:"avg_chunk_size"`
	ByKind       map[Kind]int     `json:"chunk_types"`
	Sizes        SizeDistribution `json:"size_distribution"`
}

// Summarize computes Stats; an empty sequence gives the zero value.
func Summarize(chunks []Chunk) Stats {
	if len(chunks) == 0 {
		return Stats{}
	}
	st := Stats{TotalChunks: len(chunks), ByKind: make(map[Kind]int, 2)}
	for _, c := range chunks {
		st.TotalChars += c.CharCount
		st.TotalWords += c.WordCount
		st.ByKind[c.Kind]++
		switch {
		case c.CharCount < smallChunkMax:
			st.Sizes.Small++
		case c.CharCount <= largeChunkMin:
			st.Sizes.Medium++
		default:
			st.Sizes.Large++
		}
	}
	st.AvgChunkSize = st.TotalChars / len(chunks)
	return st
}
