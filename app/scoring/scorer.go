package scoring

import (
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/lysyi3m/news-digest/app/feed"
)

const (
	highPriorityWeight = 3
	coreDomainWeight   = 1
	exclusionWeight    = -2
	titleBonus         = 2
	acceptThreshold    = 4
	maxMatchedTerms    = 5
)

// Tier vocabularies. High-priority terms signal announcements, launches and
// version bumps; core-domain terms ground an item in the topic; exclusion
// terms mark promotional or tutorial noise.
var (
	defaultHighPriorityTerms = []string{
		"released", "launched", "introduced", "unveiled", "announced", "debuts",
		"new model", "latest model", "breakthrough model", "next-generation",
		"version", "v2", "v3", "v4", "2.0", "3.0", "4.0", "update", "upgrade",
		"beta", "alpha",
		"breakthrough", "milestone", "achievement", "innovation", "revolutionary",
	}

	defaultCoreDomainTerms = []string{
		"gpt", "llm", "large language model", "transformer", "chatgpt", "claude",
		"gemini", "llama", "bert", "palm", "deepseek", "qwen",
		"copilot", "cursor", "midjourney", "dalle", "stable diffusion",
		"sora", "runway",
		"openai", "anthropic", "google ai", "deepmind", "microsoft ai", "meta ai",
		"nvidia", "hugging face",
		"artificial intelligence", "machine learning", "deep learning",
		"neural network", "computer vision", "natural language processing",
		"generative ai", "multimodal", "agent",
	}

	defaultExclusionTerms = []string{
		"advertisement", "promotion", "marketing", "sponsored", "affiliate",
		"tutorial", "how to", "guide", "tips", "tricks",
	}
)

// Result is the scoring outcome for a single item.
type Result struct {
	Accepted     bool
	Score        int
	MatchedTerms []string
}

type Scorer struct {
	highPriority []string
	coreDomain   []string
	exclusion    []string
}

func NewScorer() *Scorer {
	return &Scorer{
		highPriority: defaultHighPriorityTerms,
		coreDomain:   defaultCoreDomainTerms,
		exclusion:    defaultExclusionTerms,
	}
}

// Score computes the relevance of one item from its title and summary.
// Every term contributes its tier weight once when present, regardless of
// repeat occurrences. Acceptance requires the score to reach the threshold
// and at least one core-domain term to be present.
func (s *Scorer) Score(item feed.Item) Result {
	title := cases.Fold().String(item.Title)
	text := strings.TrimSpace(title + " " + cases.Fold().String(item.Summary))
	if text == "" {
		return Result{}
	}

	score := 0
	var matched []string

	for _, term := range s.highPriority {
		if strings.Contains(text, term) {
			score += highPriorityWeight
			matched = append(matched, term)
		}
	}

	hasCore := false
	for _, term := range s.coreDomain {
		if strings.Contains(text, term) {
			score += coreDomainWeight
			matched = append(matched, term)
			hasCore = true
		}
	}

	for _, term := range s.exclusion {
		if strings.Contains(text, term) {
			score += exclusionWeight
		}
	}

	for _, term := range s.highPriority {
		if strings.Contains(title, term) {
			score += titleBonus
			break
		}
	}

	return Result{
		Accepted:     score >= acceptThreshold && hasCore,
		Score:        score,
		MatchedTerms: dedupTerms(matched, maxMatchedTerms),
	}
}

// Run scores a batch and returns only accepted items, annotated and sorted
// by score descending. The sort is stable so ties keep feed order.
func (s *Scorer) Run(items []feed.Item) []feed.Item {
	accepted := make([]feed.Item, 0, len(items))
	for _, item := range items {
		result := s.Score(item)
		if !result.Accepted {
			continue
		}

		item.Score = result.Score
		item.MatchedTerms = result.MatchedTerms
		accepted = append(accepted, item)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Score > accepted[j].Score
	})

	slog.Debug("Relevance scoring complete", "candidates", len(items), "accepted", len(accepted))

	return accepted
}

func dedupTerms(terms []string, max int) []string {
	seen := make(map[string]bool, len(terms))
	unique := make([]string, 0, len(terms))

	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true
		unique = append(unique, term)
		if len(unique) == max {
			break
		}
	}

	return unique
}
