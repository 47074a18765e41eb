// Package heuristic estimates how likely a text is machine-generated from
// cheap statistical signals: token surprise, sentence-length burstiness
// and structural regularity. It needs no model and no network.
package heuristic

import (
	"math"
	"strings"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/textproc"
)

const (
	// smoothing is the additive (Laplace) constant of the unigram model.
	smoothing = 1.0

	// lexiconScale converts marker density per 100 words into signal units.
	lexiconScale = 0.1

	// burstinessScale is the coefficient of variation treated as fully human.
	burstinessScale = 0.6

	// transitionSaturation is the transition density per 1000 words that
	// saturates the structural transition signal.
	transitionSaturation = 40.0

	// uniformBand is the relative distance to the mean sentence length
	// within which a sentence counts as uniform.
	uniformBand = 0.2
)

// Signals are the intermediate measurements behind an estimate.
type Signals struct {
	// Perplexity is the generation evidence from token surprise and
	// lexicon markers (0-1).
	Perplexity float64

	// Surprise is the normalised mean per-token surprise (0-1).
	Surprise float64

	// Burstiness is the coefficient of variation of sentence lengths.
	Burstiness float64

	// Structural is the generation evidence from sentence structure (0-1).
	Structural float64

	FormalMarkers int
	HumanMarkers  int

	// Authorship is true when acknowledgement or personal phrasing damped the score.
	Authorship bool
}

// Estimate is the outcome of one heuristic pass.
type Estimate struct {
	// Percent is the likelihood of generation (0 to the configured ceiling).
	Percent    float64
	Confidence domain.Confidence
	Words      int
	Sentences  int
	Signals    Signals
}

// Engine computes generated-text estimates. It is stateless and safe for
// concurrent use.
type Engine struct {
	cfg domain.HeuristicSettings
}

// NewEngine creates a heuristic engine.
func NewEngine(cfg domain.HeuristicSettings) *Engine {
	return &Engine{cfg: cfg}
}

// Estimate scores text. Text without words scores 0 with low confidence.
func (e *Engine) Estimate(text string) Estimate {
	tokens := textproc.Tokens(text)
	sentences := textproc.Sentences(text, 1)

	est := Estimate{
		Words:      len(tokens),
		Sentences:  len(sentences),
		Confidence: domain.ConfidenceLow,
	}
	if len(tokens) == 0 {
		return est
	}

	lengths := make([]int, 0, len(sentences))
	openings := make([]string, 0, len(sentences))
	for _, s := range sentences {
		words := textproc.Tokens(s)
		if len(words) == 0 {
			continue
		}
		lengths = append(lengths, len(words))
		openings = append(openings, opening(words))
	}

	sig := Signals{
		Surprise:   Surprise(tokens),
		Burstiness: Burstiness(lengths),
	}
	for _, t := range tokens {
		if contains(formalMarkers, t) {
			sig.FormalMarkers++
		}
		if contains(humanMarkers, t) {
			sig.HumanMarkers++
		}
	}

	per100 := 100 / float64(len(tokens))
	lexical := lexiconScale * per100 * float64(sig.FormalMarkers-sig.HumanMarkers)
	sig.Perplexity = clamp01(2*(1-sig.Surprise) + lexical)

	burst := clamp01(1 - sig.Burstiness/burstinessScale)
	sig.Structural = (repeatedOpenings(openings) +
		clamp01(transitionDensity(tokens)/transitionSaturation) +
		uniformity(lengths)) / 3

	// Length variation needs two sentences; with fewer the burstiness
	// weight is dropped and the others renormalised.
	wBurst := e.cfg.WeightBurstiness
	if len(lengths) < 2 {
		wBurst = 0
	}
	weights := e.cfg.WeightPerplexity + wBurst + e.cfg.WeightStructural
	score := 0.0
	if weights > 0 {
		score = 100 * (e.cfg.WeightPerplexity*sig.Perplexity +
			wBurst*burst +
			e.cfg.WeightStructural*sig.Structural) / weights
	}
	score = math.Min(math.Max(score, 0), e.cfg.Ceiling)

	if authorshipPhrasesIn(text) >= authorshipMinPhrases {
		sig.Authorship = true
		score *= e.cfg.AuthorshipDamping
	}

	est.Percent = score
	est.Signals = sig
	est.Confidence = confidenceFor(score)
	if len(tokens) < e.cfg.MinWords {
		est.Confidence = domain.ConfidenceLow
	}
	return est
}

// Surprise returns the mean per-token surprise -ln(p) under a
// Laplace-smoothed unigram model of the text itself, normalised to [0, 1]
// by the surprise of a text whose tokens are all distinct.
func Surprise(tokens []string) float64 {
	n := len(tokens)
	if n < 2 {
		return 0
	}
	counts := make(map[string]int, n)
	for _, t := range tokens {
		counts[t]++
	}
	v := float64(len(counts))
	total := float64(n) + smoothing*v

	sum := 0.0
	for _, t := range tokens {
		sum -= math.Log((float64(counts[t]) + smoothing) / total)
	}
	mean := sum / float64(n)

	ceiling := math.Log(total / (1 + smoothing))
	if ceiling <= 0 {
		return 0
	}
	return clamp01(mean / ceiling)
}

// Burstiness returns the coefficient of variation (population standard
// deviation over mean) of sentence lengths. Uniform lengths give 0.
func Burstiness(lengths []int) float64 {
	if len(lengths) < 2 {
		return 0
	}
	mean := 0.0
	for _, l := range lengths {
		mean += float64(l)
	}
	mean /= float64(len(lengths))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, l := range lengths {
		d := float64(l) - mean
		variance += d * d
	}
	variance /= float64(len(lengths))
	return math.Sqrt(variance) / mean
}

// repeatedOpenings is the share of sentences whose opening bigram is
// shared with another sentence.
func repeatedOpenings(openings []string) float64 {
	if len(openings) < 2 {
		return 0
	}
	counts := make(map[string]int, len(openings))
	for _, o := range openings {
		counts[o]++
	}
	repeated := 0
	for _, o := range openings {
		if counts[o] > 1 {
			repeated++
		}
	}
	return float64(repeated) / float64(len(openings))
}

// transitionDensity is the number of formal transitions per 1000 words.
func transitionDensity(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	n := 0
	for _, t := range tokens {
		if contains(transitionMarkers, t) {
			n++
		}
	}
	return float64(n) * 1000 / float64(len(tokens))
}

// uniformity is the share of sentences whose length lies within
// uniformBand of the mean length. A single sentence carries no signal.
func uniformity(lengths []int) float64 {
	if len(lengths) < 2 {
		return 0
	}
	mean := 0.0
	for _, l := range lengths {
		mean += float64(l)
	}
	mean /= float64(len(lengths))

	uniform := 0
	for _, l := range lengths {
		if math.Abs(float64(l)-mean) <= uniformBand*mean {
			uniform++
		}
	}
	return float64(uniform) / float64(len(lengths))
}

func opening(words []string) string {
	if len(words) == 1 {
		return words[0]
	}
	return words[0] + " " + words[1]
}

// authorshipPhrasesIn counts the distinct authorship phrases present in text.
func authorshipPhrasesIn(text string) int {
	padded := " " + textproc.Normalize(text) + " "
	n := 0
	for _, p := range authorshipPhrases {
		if strings.Contains(padded, " "+p+" ") {
			n++
		}
	}
	return n
}

// confidenceFor grades an estimate by its distance to the 50 point boundary.
func confidenceFor(percent float64) domain.Confidence {
	switch d := math.Abs(percent - 50); {
	case d >= 30:
		return domain.ConfidenceHigh
	case d >= 15:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
