package sentiment

import (
	"context"
	"strings"
	"unicode"

	"webwatch/internal/domain/entity"
)

// lookback is how many preceding tokens are searched for modifiers.
const lookback = 2

// Lexicon is the dependency-free default classifier.
//
// Text is split on whitespace and each token is stripped of surrounding
// punctuation. A sentiment word preceded (within two tokens) by a negator has
// its polarity flipped; an intensifier in the same window multiplies its
// weight. Positive and negative weights are accumulated separately and
// combined as (pos - neg) / max(pos + neg, 1).
type Lexicon struct {
	language     string
	positive     map[string]struct{}
	negative     map[string]struct{}
	negators     map[string]struct{}
	intensifiers map[string]float64
}

// NewLexicon returns the lexicon for language ("pt" or "en").
// Unknown languages fall back to Portuguese.
func NewLexicon(language string) *Lexicon {
	switch strings.ToLower(language) {
	case "en":
		return newLexicon("en", englishPositive, englishNegative, englishNegators, englishIntensifiers)
	default:
		return newLexicon("pt", portuguesePositive, portugueseNegative, portugueseNegators, portugueseIntensifiers)
	}
}

func newLexicon(lang string, pos, neg, negators []string, intensifiers map[string]float64) *Lexicon {
	return &Lexicon{
		language:     lang,
		positive:     toSet(pos),
		negative:     toSet(neg),
		negators:     toSet(negators),
		intensifiers: intensifiers,
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Name implements Provider.
func (l *Lexicon) Name() string { return "lexicon-" + l.language }

// Analyze implements Analyzer.
func (l *Lexicon) Analyze(_ context.Context, text string) entity.Sentiment {
	return l.score(text)
}

// Classify implements Provider. It never returns an error.
func (l *Lexicon) Classify(_ context.Context, text string) (entity.Sentiment, error) {
	return l.score(text), nil
}

// ClassifyBatch implements BatchProvider.
func (l *Lexicon) ClassifyBatch(_ context.Context, texts []string) ([]entity.Sentiment, error) {
	out := make([]entity.Sentiment, len(texts))
	for i, t := range texts {
		out[i] = l.score(t)
	}
	return out, nil
}

func (l *Lexicon) score(text string) entity.Sentiment {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return entity.NeutralSentiment()
	}

	var pos, neg float64
	bearing := 0
	for i, tok := range tokens {
		_, isPos := l.positive[tok]
		_, isNeg := l.negative[tok]
		if !isPos && !isNeg {
			continue
		}
		bearing++

		weight := 1.0
		negated := false
		for j := i - 1; j >= 0 && j >= i-lookback; j-- {
			if _, ok := l.negators[tokens[j]]; ok {
				negated = true
			}
			if f, ok := l.intensifiers[tokens[j]]; ok && weight == 1.0 {
				weight = f
			}
		}

		if isPos != negated {
			pos += weight
		} else {
			neg += weight
		}
	}

	total := pos + neg
	if total < 1 {
		total = 1
	}
	score := clamp((pos-neg)/total, -1, 1)
	confidence := clamp(float64(bearing)/(float64(len(tokens))*0.1), 0.1, 0.9)

	return entity.Sentiment{
		Label:      LabelFor(score),
		Score:      score,
		Confidence: confidence,
	}
}

// tokenize lowercases text, splits on whitespace and trims punctuation.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := fields[:0]
	for _, f := range fields {
		t := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
