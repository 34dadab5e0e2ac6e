package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"webwatch/internal/domain/entity"
	"webwatch/internal/usecase/sentiment"
)

// ErrMalformedResponse is returned when the model answer is not the
// requested JSON.
var ErrMalformedResponse = errors.New("malformed classifier response")

const singleInstruction = `Classify the sentiment of the text below.
Answer with JSON only, no prose: {"label":"positive|negative|neutral","score":<-1..1>,"confidence":<0..1>}

Text:
`

const batchInstruction = `Classify the sentiment of each numbered text below.
Answer with a JSON array only, one object per text in the same order:
[{"label":"positive|negative|neutral","score":<-1..1>,"confidence":<0..1>}, ...]

`

type verdict struct {
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

func (v verdict) toSentiment() (entity.Sentiment, error) {
	s := entity.Sentiment{
		Label:      strings.ToLower(strings.TrimSpace(v.Label)),
		Score:      v.Score,
		Confidence: v.Confidence,
	}
	if !sentiment.Valid(s) {
		return entity.Sentiment{}, fmt.Errorf("%w: invalid verdict %+v", ErrMalformedResponse, v)
	}
	return s, nil
}

func buildPrompt(text string) string {
	return singleInstruction + truncate(text)
}

func buildBatchPrompt(texts []string) string {
	var b strings.Builder
	b.WriteString(batchInstruction)
	for i, t := range texts {
		fmt.Fprintf(&b, "[%d]\n%s\n\n", i+1, truncate(t))
	}
	return b.String()
}

// parseVerdict reads the first JSON object in raw; models sometimes wrap
// their answer in a code fence.
func parseVerdict(raw string) (entity.Sentiment, error) {
	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return entity.Sentiment{}, fmt.Errorf("%w: no JSON object", ErrMalformedResponse)
	}
	var v verdict
	if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err != nil {
		return entity.Sentiment{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return v.toSentiment()
}

// parseBatch reads a JSON array of exactly n verdicts.
func parseBatch(raw string, n int) ([]entity.Sentiment, error) {
	start, end := strings.Index(raw, "["), strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array", ErrMalformedResponse)
	}
	var vs []verdict
	if err := json.Unmarshal([]byte(raw[start:end+1]), &vs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(vs) != n {
		return nil, fmt.Errorf("%w: got %d verdicts for %d texts", ErrMalformedResponse, len(vs), n)
	}
	out := make([]entity.Sentiment, n)
	for i, v := range vs {
		s, err := v.toSentiment()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func truncate(text string) string {
	if utf8.RuneCountInString(text) <= maxInputRunes {
		return text
	}
	return string([]rune(text)[:maxInputRunes])
}
