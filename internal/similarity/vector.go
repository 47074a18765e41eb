// Package similarity implements the local similarity engine: sparse TF-IDF
// vectors over a term index, cosine and Jaccard similarity, edit-distance
// scoring and the comparison of a text against a corpus snapshot.
package similarity

import (
	"math"
	"sort"
)

// Vector is a sparse vector with terms kept in ascending order.
// Ordered storage makes every summation deterministic, so Cosine is
// exactly symmetric and exactly 1 for identical vectors.
type Vector struct {
	Terms   []string
	Weights []float64
}

// NewVector builds a Vector from a term -> weight map, dropping zero weights.
func NewVector(m map[string]float64) Vector {
	terms := make([]string, 0, len(m))
	for term, w := range m {
		if w != 0 {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	weights := make([]float64, len(terms))
	for i, term := range terms {
		weights[i] = m[term]
	}
	return Vector{Terms: terms, Weights: weights}
}

// Len returns the number of non-zero entries.
func (v Vector) Len() int {
	return len(v.Terms)
}

// sumSquares returns the squared norm.
func (v Vector) sumSquares() float64 {
	var s float64
	for _, w := range v.Weights {
		s += w * w
	}
	return s
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.sumSquares())
}

// Dot returns the dot product of a and b by merging their sorted terms.
func Dot(a, b Vector) float64 {
	var (
		dot  float64
		i, j int
	)
	for i < len(a.Terms) && j < len(b.Terms) {
		switch {
		case a.Terms[i] == b.Terms[j]:
			dot += a.Weights[i] * b.Weights[j]
			i++
			j++
		case a.Terms[i] < b.Terms[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// Cosine returns the cosine similarity of a and b.
// Empty or zero vectors have similarity 0.
func Cosine(a, b Vector) float64 {
	na, nb := a.sumSquares(), b.sumSquares()
	if na == 0 || nb == 0 {
		return 0
	}
	c := Dot(a, b) / math.Sqrt(na*nb)
	switch {
	case c > 1:
		return 1
	case c < -1:
		return -1
	}
	return c
}

// TermFrequencies returns term -> count/len(terms).
func TermFrequencies(terms []string) map[string]float64 {
	tf := make(map[string]float64)
	if len(terms) == 0 {
		return tf
	}
	for _, t := range terms {
		tf[t]++
	}
	n := float64(len(terms))
	for t, c := range tf {
		tf[t] = c / n
	}
	return tf
}

// Jaccard returns |A∩B| / |A∪B| over the key sets of a and b.
func Jaccard(a, b map[string]float64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	shared := 0
	for term := range a {
		if _, ok := b[term]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}
