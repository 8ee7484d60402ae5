package embedding

import (
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// DefaultDimensions is the size of fallback vectors.
const DefaultDimensions = 256

// Similarity returns the cosine similarity of a and b clamped into [0,1].
// Empty, zero-norm and mismatched vectors have similarity 0.
func Similarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0
	}
	return math.Max(0, math.Min(1, sim))
}

// BestMatchSimilarity averages, over every job vector, the highest similarity
// against any candidate vector. It is 0 when either side is empty.
func BestMatchSimilarity(job, candidate [][]float32) float64 {
	if len(job) == 0 || len(candidate) == 0 {
		return 0
	}

	var total float64
	for _, j := range job {
		var best float64
		for _, c := range candidate {
			if s := Similarity(j, c); s > best {
				best = s
			}
		}
		total += best
	}

	return total / float64(len(job))
}

// FallbackVector derives a deterministic unit vector from text by hashing its
// lower-cased tokens and character trigrams into dimensions buckets. Texts that
// share words or spelling fragments end up with a positive similarity.
func FallbackVector(text string, dimensions int) []float32 {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	vector := make([]float32, dimensions)

	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return vector
	}

	add := func(feature string, weight float32) {
		vector[xxhash.Sum64String(feature)%uint64(dimensions)] += weight
	}

	for _, token := range strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		add("w:"+token, 2)

		padded := []rune(" " + token + " ")
		for i := 0; i+3 <= len(padded); i++ {
			add("c:"+string(padded[i:i+3]), 1)
		}
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v * v)
	}
	if sumSquares > 0 {
		norm := float32(1 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
