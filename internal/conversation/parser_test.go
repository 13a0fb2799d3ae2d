package conversation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()

	tests := []struct {
		input       string
		wantType    domain.IntentType
		wantPayload string
	}{
		// Volume
		{"500", domain.IntentSetVolume, "500"},
		{"750ml", domain.IntentSetVolume, "750"},
		{"250 ML", domain.IntentSetVolume, "250"},
		{"volume 400", domain.IntentSetVolume, "400"},
		{"333.5", domain.IntentSetVolume, "333.5"},

		// Ratio
		{"strong", domain.IntentSetStrong, ""},
		{"1:15", domain.IntentSetStrong, ""},
		{"standard", domain.IntentSetStandard, ""},
		{"mild", domain.IntentSetStandard, ""},
		{"ratio", domain.IntentToggleRatio, ""},
		{"toggle", domain.IntentToggleRatio, ""},

		// Plan
		{"table", domain.IntentShowPlan, ""},
		{"compare", domain.IntentComparePlans, ""},

		// Start
		{"brew", domain.IntentStartBrew, ""},
		{"start", domain.IntentStartBrew, ""},
		{"let's go", domain.IntentStartBrew, ""},

		// Advance variants
		{"next", domain.IntentAdvance, ""},
		{"done", domain.IntentAdvance, ""},
		{"Next.", domain.IntentAdvance, ""},
		{"n", domain.IntentAdvance, ""},

		{"skip", domain.IntentSkip, ""},
		{"repeat", domain.IntentRepeat, ""},
		{"what?", domain.IntentRepeat, ""},

		// Pause/Resume
		{"pause", domain.IntentPause, ""},
		{"brb", domain.IntentPause, ""},
		{"resume", domain.IntentResume, ""},
		{"back", domain.IntentResume, ""},

		{"status", domain.IntentStatus, ""},

		// Timers
		{"timer", domain.IntentStartTimer, ""},
		{"ready", domain.IntentStartTimer, ""},
		{"ok", domain.IntentDismissTimer, ""},
		{"dismiss", domain.IntentDismissTimer, ""},
		{"dismiss timer-stage-1", domain.IntentDismissTimer, "timer-stage-1"},

		// Cocktails
		{"cocktails", domain.IntentListCocktails, ""},
		{"cocktail 2", domain.IntentShowCocktail, "2"},
		{"cocktail whiskey sour", domain.IntentShowCocktail, "whiskey sour"},

		// Theme
		{"theme", domain.IntentToggleTheme, ""},
		{"Light", domain.IntentToggleTheme, "light"},

		{"history", domain.IntentHistory, ""},
		{"help", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},

		// Quit
		{"quit", domain.IntentQuit, ""},
		{"q", domain.IntentQuit, ""},

		// Unknown
		{"grind finer please", domain.IntentUnknown, "grind finer please"},
		{"", domain.IntentUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, err := parser.Parse(ctx, tt.input, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent.Type != tt.wantType {
				t.Errorf("input=%q: got type %s, want %s", tt.input, intent.Type, tt.wantType)
			}
			if tt.wantPayload != "" && intent.Payload != tt.wantPayload {
				t.Errorf("input=%q: got payload %q, want %q", tt.input, intent.Payload, tt.wantPayload)
			}
		})
	}
}

func TestCLINotifier(t *testing.T) {
	var lines []string
	n := NewCLINotifier(logger.Discard(), func(format string, a ...interface{}) {
		lines = append(lines, format)
		for _, v := range a {
			if s, ok := v.(string); ok {
				lines = append(lines, s)
			}
		}
	})
	ctx := context.Background()

	if err := n.Notify(ctx, "bloom almost done"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := n.NotifyUrgent(ctx, "bloom is up"); err != nil {
		t.Fatalf("notify urgent: %v", err)
	}

	joined := strings.Join(lines, "|")
	if !strings.Contains(joined, "bloom almost done") || !strings.Contains(joined, "bloom is up") {
		t.Fatalf("messages not printed: %q", joined)
	}
	if !strings.Contains(joined, red) {
		t.Fatal("urgent message not red")
	}
}

func TestCLINotifierPlain(t *testing.T) {
	var got string
	n := NewCLINotifier(logger.Discard(), func(format string, a ...interface{}) {
		got = fmt.Sprintf(format, a...)
	}, WithColor(false))

	if err := n.NotifyUrgent(context.Background(), "POUR"); err != nil {
		t.Fatalf("notify urgent: %v", err)
	}
	if got != "!! POUR" {
		t.Fatalf("got %q, want %q", got, "!! POUR")
	}
	if strings.Contains(got, "\033[") {
		t.Fatal("plain notifier emitted escape codes")
	}
}
