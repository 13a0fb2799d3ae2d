// Package conversation provides intent parsing and user notification implementations.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
	// payload is the capture group carried as the intent payload; 0 means none.
	payload int
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regex: regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(ml)?$`), intent: domain.IntentSetVolume, payload: 1},
		{regex: regexp.MustCompile(`(?i)^(?:volume|vol|v)\s+(\d+(?:\.\d+)?)\s*(ml)?$`), intent: domain.IntentSetVolume, payload: 1},
		{regex: regexp.MustCompile(`(?i)^(strong|1:15)$`), intent: domain.IntentSetStrong},
		{regex: regexp.MustCompile(`(?i)^(standard|mild|normal|1:17)$`), intent: domain.IntentSetStandard},
		{regex: regexp.MustCompile(`(?i)^(ratio|toggle)$`), intent: domain.IntentToggleRatio},
		{regex: regexp.MustCompile(`(?i)^(table|plan|show)$`), intent: domain.IntentShowPlan},
		{regex: regexp.MustCompile(`(?i)^(compare|diff)$`), intent: domain.IntentComparePlans},
		{regex: regexp.MustCompile(`(?i)^(brew|start|go|begin|let'?s go)$`), intent: domain.IntentStartBrew},
		{regex: regexp.MustCompile(`(?i)^(next|done|continue|n|advance)$`), intent: domain.IntentAdvance},
		{regex: regexp.MustCompile(`(?i)^(skip|s)$`), intent: domain.IntentSkip},
		{regex: regexp.MustCompile(`(?i)^(repeat|again|what\??|r)$`), intent: domain.IntentRepeat},
		{regex: regexp.MustCompile(`(?i)^(pause|brb|wait|p)$`), intent: domain.IntentPause},
		{regex: regexp.MustCompile(`(?i)^(resume|back|unpause)$`), intent: domain.IntentResume},
		{regex: regexp.MustCompile(`(?i)^(status|where|progress|info)$`), intent: domain.IntentStatus},
		{regex: regexp.MustCompile(`(?i)^(timer|start timer|ready|set timer)$`), intent: domain.IntentStartTimer},
		{regex: regexp.MustCompile(`(?i)^(dismiss|ok|got it)$`), intent: domain.IntentDismissTimer},
		{regex: regexp.MustCompile(`(?i)^dismiss\s+(\S+)$`), intent: domain.IntentDismissTimer, payload: 1},
		{regex: regexp.MustCompile(`(?i)^(cocktails|drinks|bar)$`), intent: domain.IntentListCocktails},
		{regex: regexp.MustCompile(`(?i)^(?:cocktail|drink)\s+(.+)$`), intent: domain.IntentShowCocktail, payload: 1},
		{regex: regexp.MustCompile(`(?i)^(theme|dark|light)$`), intent: domain.IntentToggleTheme},
		{regex: regexp.MustCompile(`(?i)^(history|log|recent)$`), intent: domain.IntentHistory},
		{regex: regexp.MustCompile(`(?i)^(help|h|\?)$`), intent: domain.IntentHelp},
		{regex: regexp.MustCompile(`(?i)^(quit|exit|stop|q|abandon)$`), intent: domain.IntentQuit},
	}
	return p
}

// Parse converts user input into an intent. The session is unused by the
// keyword rules but kept for parsers that need context.
func (p *KeywordParser) Parse(ctx context.Context, input string, session *domain.Session) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}
	trimmed = strings.TrimRight(trimmed, ".!")

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)
		intent := &domain.Intent{Type: rule.intent}
		if rule.payload > 0 && rule.payload < len(m) {
			intent.Payload = strings.TrimSpace(m[rule.payload])
		}
		// "dark" and "light" pick a scheme instead of toggling.
		if rule.intent == domain.IntentToggleTheme && !strings.EqualFold(trimmed, "theme") {
			intent.Payload = strings.ToLower(trimmed)
		}
		return intent, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}
