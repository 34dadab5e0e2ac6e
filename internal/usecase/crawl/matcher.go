package crawl

import (
	"strings"

	"webwatch/internal/domain/entity"
)

// Rules are the effective keyword and hashtag lists for one source.
type Rules struct {
	Keywords        []string
	ExcludeKeywords []string
	Hashtags        []string
}

// RulesFor merges the source lists with its project's (source first,
// case-insensitive duplicates dropped). project may be nil.
func RulesFor(src *entity.Source, project *entity.Project) Rules {
	if project == nil || !project.IsActive {
		return Rules{
			Keywords:        entity.NormalizeTerms(src.Keywords),
			ExcludeKeywords: entity.NormalizeTerms(src.ExcludeKeywords),
			Hashtags:        entity.NormalizeHashtags(src.Hashtags),
		}
	}
	return Rules{
		Keywords:        entity.NormalizeTerms(src.Keywords, project.Keywords),
		ExcludeKeywords: entity.NormalizeTerms(src.ExcludeKeywords, project.ExcludeKeywords),
		Hashtags:        entity.NormalizeHashtags(src.Hashtags, project.Hashtags),
	}
}

// Match verdicts.
const (
	MatchAccepted  = "accepted"
	MatchExcluded  = "excluded"
	MatchUnmatched = "unmatched"
)

// MatchResult is the outcome of Match.
type MatchResult struct {
	Verdict         string
	ExcludedBy      string
	MatchedKeywords []string
	MatchedHashtags []string
}

// Accepted reports whether the candidate passed.
func (m MatchResult) Accepted() bool { return m.Verdict == MatchAccepted }

// Match applies rules to a candidate body. Matching is case-insensitive
// substring containment ("cat" matches "category"). Exclusions win over
// required keywords; an empty required list accepts everything not
// excluded. Hashtags are recorded but never gate acceptance.
func Match(body string, tags []string, rules Rules) MatchResult {
	text := strings.ToLower(body)

	for _, ex := range rules.ExcludeKeywords {
		ex = strings.ToLower(ex)
		if ex != "" && strings.Contains(text, ex) {
			return MatchResult{Verdict: MatchExcluded, ExcludedBy: ex}
		}
	}

	var matched []string
	for _, kw := range rules.Keywords {
		kw = strings.ToLower(kw)
		if kw != "" && strings.Contains(text, kw) {
			matched = append(matched, kw)
		}
	}
	if len(rules.Keywords) > 0 && len(matched) == 0 {
		return MatchResult{Verdict: MatchUnmatched}
	}

	return MatchResult{
		Verdict:         MatchAccepted,
		MatchedKeywords: matched,
		MatchedHashtags: matchHashtags(tags, rules.Hashtags),
	}
}

func matchHashtags(tags, wanted []string) []string {
	if len(tags) == 0 || len(wanted) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		have[strings.ToLower(t)] = struct{}{}
	}
	var out []string
	for _, w := range wanted {
		if _, ok := have[strings.ToLower(w)]; ok {
			out = append(out, w)
		}
	}
	return out
}
