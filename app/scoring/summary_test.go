package scoring

import (
	"testing"

	"github.com/lysyi3m/news-digest/app/feed"
)

func TestSummarizer_Summarize_ModelRelease(t *testing.T) {
	summarizer := NewSummarizer()

	got := summarizer.Summarize(feed.Item{
		Title:        "GPT model released",
		MatchedTerms: []string{"released", "gpt"},
	})

	expected := "New language model release with notable capability gains (notable)"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestSummarizer_Summarize_ProductRelease(t *testing.T) {
	summarizer := NewSummarizer()

	got := summarizer.Summarize(feed.Item{
		Title:        "Robotics platform announced",
		MatchedTerms: []string{"announced"},
	})

	expected := "Significant product or technology release (notable)"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestSummarizer_Summarize_Milestone(t *testing.T) {
	summarizer := NewSummarizer()

	got := summarizer.Summarize(feed.Item{
		Title:        "AI breakthrough unveiled",
		MatchedTerms: []string{"breakthrough"},
	})

	expected := "Technical milestone pushing beyond current capability (high value)"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestSummarizer_Summarize_VersionUpdate(t *testing.T) {
	summarizer := NewSummarizer()

	got := summarizer.Summarize(feed.Item{
		Title:        "Framework update analysis report",
		MatchedTerms: []string{"update"},
	})

	expected := "Major version update with functional improvements (routine)"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestSummarizer_Summarize_Default(t *testing.T) {
	summarizer := NewSummarizer()

	got := summarizer.Summarize(feed.Item{
		Title: "Survey of machine learning tutorials",
	})

	expected := "Notable development in the field (marginal)"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestSummarizer_Run_AnnotatesAllItems(t *testing.T) {
	summarizer := NewSummarizer()

	items := summarizer.Run([]feed.Item{
		{Title: "GPT model released", MatchedTerms: []string{"released", "gpt"}},
		{Title: "Quiet week in the lab"},
	})

	for i, item := range items {
		if item.RelevanceSummary == "" {
			t.Errorf("Item %d has no relevance summary", i)
		}
	}
}
