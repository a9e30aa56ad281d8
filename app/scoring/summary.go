package scoring

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/lysyi3m/news-digest/app/feed"
)

// Summarizer derives a short digest line per item: one key-insight sentence
// plus a value tier, built from the matched terms and the item text.
type Summarizer struct{}

func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

var (
	highValueIndicators = []string{
		"breakthrough", "revolutionary", "milestone", "first-ever", "unprecedented",
		"launched", "released", "unveiled", "announced",
	}

	mediumValueIndicators = []string{
		"funding", "investment", "partnership", "collaboration",
		"update", "upgrade", "improvement",
	}

	lowValueIndicators = []string{
		"analysis", "report", "study", "survey", "tutorial",
	}
)

// Run annotates every item with its relevance summary.
func (s *Summarizer) Run(items []feed.Item) []feed.Item {
	for i := range items {
		items[i].RelevanceSummary = s.Summarize(items[i])
	}
	return items
}

func (s *Summarizer) Summarize(item feed.Item) string {
	text := cases.Fold().String(item.Title + " " + item.Summary)

	insight := keyInsight(item.MatchedTerms)
	tier := valueTier(text)

	return fmt.Sprintf("%s (%s)", insight, tier)
}

func keyInsight(matchedTerms []string) string {
	has := func(terms ...string) bool {
		for _, matched := range matchedTerms {
			for _, term := range terms {
				if matched == term {
					return true
				}
			}
		}
		return false
	}

	switch {
	case has("released", "launched", "unveiled", "announced", "debuts"):
		if has("gpt", "llm", "large language model", "chatgpt", "claude", "gemini", "llama") {
			return "New language model release with notable capability gains"
		}
		return "Significant product or technology release"
	case has("breakthrough", "milestone", "innovation", "revolutionary"):
		return "Technical milestone pushing beyond current capability"
	case has("version", "update", "upgrade", "v2", "v3", "v4", "2.0", "3.0", "4.0"):
		return "Major version update with functional improvements"
	default:
		return "Notable development in the field"
	}
}

func valueTier(foldedText string) string {
	score := 0
	for _, indicator := range highValueIndicators {
		if strings.Contains(foldedText, indicator) {
			score += 3
		}
	}
	for _, indicator := range mediumValueIndicators {
		if strings.Contains(foldedText, indicator) {
			score += 2
		}
	}
	for _, indicator := range lowValueIndicators {
		if strings.Contains(foldedText, indicator) {
			score--
		}
	}

	switch {
	case score >= 6:
		return "high value"
	case score >= 3:
		return "notable"
	case score >= 0:
		return "routine"
	default:
		return "marginal"
	}
}
