package moderation

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sensai/hubmind/pkg/logging"
	"github.com/sensai/hubmind/pkg/telemetry"
)

// Suggested actions, in escalating severity
const (
	SuggestApprove = "approve"
	SuggestFlag    = "flag"
	SuggestHide    = "hide"
	SuggestDelete  = "delete"
)

// Reputation thresholds for context adjustments
const (
	highReputation = 500
	newUserCutoff  = 50
)

// Hostility patterns specific to learning communities
var toxicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:stupid|dumb|idiot|moron)\s+(?:question|ask|asking)\b`),
	regexp.MustCompile(`(?i)\bjust\s+google\s+it\b`),
	regexp.MustCompile(`(?i)\b(?:rtfm|read\s+the\s+(?:fucking|f\*\*\*ing)\s+manual)\b`),
	regexp.MustCompile(`(?i)\b(?:noob|n00b|newbie)\s+(?:question|mistake|error)\b`),
	regexp.MustCompile(`(?i)\bwaste\s+of\s+time\b.*\b(?:question|post|discussion)\b`),
}

var dismissivePhrases = []string{
	"just google it", "this is basic", "everyone knows", "obviously you",
	"did you even try", "not hard to understand", "simple search",
}

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}(?:/\S*)?.*(?:buy|sale|discount|offer|deal)`),
	regexp.MustCompile(`(?i)\b(?:click\s+here|visit\s+now|limited\s+time|act\s+fast)\b`),
	regexp.MustCompile(`(?i)\$\d+.*(?:per\s+hour|per\s+day|easy\s+money|work\s+from\s+home)`),
}

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// Positive signals of a genuine learning contribution
var qualityIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:can\s+you\s+help|please\s+explain|could\s+someone|i\s+tried)\b`),
	regexp.MustCompile(`(?i)\b(?:here\s+is\s+my\s+code|my\s+approach|what\s+i\s+did)\b`),
	regexp.MustCompile(`(?i)\b(?:thank\s+you|thanks|appreciate|helpful|learned)\b`),
	regexp.MustCompile(`(?i)\b(?:example|solution|explanation|walkthrough|step\s+by\s+step)\b`),
}

var effortPhrases = []string{
	"i tried", "my approach", "here's what i did", "i researched",
}

// Context carries author and post metadata into the scoring pipeline
type Context struct {
	PostType         string
	AuthorReputation int
}

// Verdict is the outcome of scoring one piece of content
type Verdict struct {
	IsToxic             bool     `json:"is_toxic"`
	ToxicityScore       float64  `json:"toxicity_score"`
	Categories          []string `json:"categories"`
	SuggestedAction     string   `json:"suggested_action"`
	Explanation         string   `json:"explanation"`
	RequiresHumanReview bool     `json:"requires_human_review"`
}

// Scorer runs content through the external classifier plus the local
// hostility, spam and quality heuristics
type Scorer struct {
	classifier Classifier
	logger     *zap.Logger
}

// NewScorer creates a scorer backed by the given classifier
func NewScorer(classifier Classifier) *Scorer {
	return &Scorer{
		classifier: classifier,
		logger:     logging.GetLogger().With(zap.String("component", "moderation-scorer")),
	}
}

// Evaluate scores a post's title and body. Later checks override the
// suggested action of earlier ones; the toxicity score only ever
// ratchets up until context adjustments run. A classifier failure
// yields the safe default: not toxic, flagged for human review.
func (s *Scorer) Evaluate(ctx context.Context, title, body string, mctx *Context) *Verdict {
	_, span := telemetry.StartSpan(ctx, "moderation.evaluate")
	defer span.End()

	fullText := strings.TrimSpace(title + " " + body)

	verdict := &Verdict{
		Categories:      []string{},
		SuggestedAction: SuggestApprove,
		Explanation:     "Content appears appropriate for educational discussion.",
	}

	classified, err := s.classifier.Classify(ctx, fullText)
	if err != nil {
		s.logger.Warn("Classifier call failed, deferring to human review", zap.Error(err))
		return &Verdict{
			Categories:          []string{"moderation_error"},
			SuggestedAction:     SuggestFlag,
			Explanation:         "Automatic moderation failed. Requires human review.",
			RequiresHumanReview: true,
		}
	}

	if classified.Flagged {
		verdict.IsToxic = true
		verdict.ToxicityScore = maxFloat(verdict.ToxicityScore, 0.8)
		flagged := make([]string, 0, len(classified.Categories))
		for category, hit := range classified.Categories {
			if hit {
				flagged = append(flagged, category)
			}
		}
		sort.Strings(flagged)
		verdict.Categories = append(verdict.Categories, flagged...)
		verdict.SuggestedAction = SuggestHide
		verdict.Explanation = "Content flagged by moderation model for potentially harmful content."
	}

	if score := hostilityScore(fullText); score > 0.6 {
		verdict.IsToxic = true
		verdict.ToxicityScore = maxFloat(verdict.ToxicityScore, score)
		verdict.Categories = append(verdict.Categories, "educational_hostility")
		verdict.SuggestedAction = SuggestFlag
		verdict.Explanation = "Content may be discouraging to learners or violates educational community standards."
	}

	if score := spamScore(fullText); score > 0.7 {
		verdict.IsToxic = true
		verdict.ToxicityScore = maxFloat(verdict.ToxicityScore, score)
		verdict.Categories = append(verdict.Categories, "spam")
		verdict.SuggestedAction = SuggestDelete
		verdict.Explanation = "Content appears to be spam or promotional material."
	}

	// Only longer posts are held to the quality bar
	if qualityScore(fullText, mctx) < 0.3 && len(strings.Fields(body)) > 20 {
		verdict.Categories = append(verdict.Categories, "low_quality")
		if !verdict.IsToxic {
			verdict.SuggestedAction = SuggestFlag
			verdict.Explanation = "Content may benefit from revision to be more helpful to the learning community."
			verdict.RequiresHumanReview = true
		}
	}

	if mctx != nil {
		applyContextAdjustments(verdict, mctx)
	}

	return verdict
}

// hostilityScore accumulates 0.3 per toxic pattern match and 0.2 per
// dismissive phrase, capped at 1.0
func hostilityScore(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0

	for _, pattern := range toxicPatterns {
		score += 0.3 * float64(len(pattern.FindAllString(lower, -1)))
	}
	for _, phrase := range dismissivePhrases {
		if strings.Contains(lower, phrase) {
			score += 0.2
		}
	}
	return minFloat(score, 1.0)
}

// spamScore accumulates 0.4 per spam pattern match, 0.3 for more than
// two links and 0.3 for highly repetitive text, capped at 1.0
func spamScore(text string) float64 {
	score := 0.0

	for _, pattern := range spamPatterns {
		score += 0.4 * float64(len(pattern.FindAllString(text, -1)))
	}

	if len(urlPattern.FindAllString(text, -1)) > 2 {
		score += 0.3
	}

	words := strings.Fields(text)
	if len(words) > 10 {
		unique := make(map[string]struct{}, len(words))
		for _, word := range words {
			unique[strings.ToLower(word)] = struct{}{}
		}
		repetition := 1 - float64(len(unique))/float64(len(words))
		if repetition > 0.7 {
			score += 0.3
		}
	}
	return minFloat(score, 1.0)
}

// qualityScore starts neutral at 0.5 and adjusts for engagement,
// effort and structure signals, clamped to [0, 1]
func qualityScore(text string, mctx *Context) float64 {
	score := 0.5
	lower := strings.ToLower(text)

	for _, pattern := range qualityIndicators {
		score += 0.1 * float64(len(pattern.FindAllString(lower, -1)))
	}

	if strings.Contains(text, "```") || strings.Contains(lower, "example:") || strings.Contains(lower, "for instance") {
		score += 0.2
	}

	score += minFloat(0.1*float64(strings.Count(text, "?")), 0.3)

	for _, phrase := range effortPhrases {
		if strings.Contains(lower, phrase) {
			score += 0.15
		}
	}

	if len(strings.Split(text, ".")) > 2 {
		score += 0.1
	}

	if mctx != nil {
		words := len(strings.Fields(text))
		if mctx.PostType == "question" && words < 10 {
			score -= 0.2
		} else if (mctx.PostType == "note" || mctx.PostType == "thread") && words > 50 {
			score += 0.1
		}
	}

	return minFloat(maxFloat(score, 0.0), 1.0)
}

// applyContextAdjustments gives established authors the benefit of the
// doubt and holds new authors to a stricter bar
func applyContextAdjustments(verdict *Verdict, mctx *Context) {
	if mctx.AuthorReputation > highReputation {
		verdict.ToxicityScore *= 0.8
		if verdict.SuggestedAction == SuggestFlag || verdict.SuggestedAction == SuggestHide {
			verdict.RequiresHumanReview = true
			verdict.Explanation += " (Flagged for review due to high author reputation)"
		}
	} else if mctx.AuthorReputation < newUserCutoff {
		if verdict.ToxicityScore > 0.3 {
			verdict.SuggestedAction = SuggestFlag
			verdict.RequiresHumanReview = true
		}
	}

	if mctx.PostType == "question" && contains(verdict.Categories, "low_quality") {
		verdict.Explanation += " Consider providing more context, code samples, or specific error messages."
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
