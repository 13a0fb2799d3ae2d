package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentSetVolume
	IntentSetStrong
	IntentSetStandard
	IntentToggleRatio
	IntentShowPlan
	IntentComparePlans
	IntentStartBrew
	IntentAdvance
	IntentSkip
	IntentRepeat
	IntentPause
	IntentResume
	IntentStatus
	IntentStartTimer
	IntentDismissTimer
	IntentListCocktails
	IntentShowCocktail // payload is a list number or a search term
	IntentToggleTheme
	IntentHistory
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	for name, t := range intentNames {
		if t == i && t != IntentUnknown {
			return name
		}
	}
	return "unknown"
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string // optional context, e.g. the volume for set_volume
}

// intentNames maps snake_case names to IntentType values.
var intentNames = map[string]IntentType{
	"set_volume":     IntentSetVolume,
	"set_strong":     IntentSetStrong,
	"set_standard":   IntentSetStandard,
	"toggle_ratio":   IntentToggleRatio,
	"show_plan":      IntentShowPlan,
	"compare_plans":  IntentComparePlans,
	"start_brew":     IntentStartBrew,
	"advance":        IntentAdvance,
	"skip":           IntentSkip,
	"repeat":         IntentRepeat,
	"pause":          IntentPause,
	"resume":         IntentResume,
	"status":         IntentStatus,
	"start_timer":    IntentStartTimer,
	"dismiss_timer":  IntentDismissTimer,
	"list_cocktails": IntentListCocktails,
	"show_cocktail":  IntentShowCocktail,
	"toggle_theme":   IntentToggleTheme,
	"history":        IntentHistory,
	"help":           IntentHelp,
	"quit":           IntentQuit,
	"unknown":        IntentUnknown,
}

// IntentFromString converts a snake_case intent name to an IntentType.
// Returns IntentUnknown for unrecognized names.
func IntentFromString(name string) IntentType {
	if t, ok := intentNames[name]; ok {
		return t
	}
	return IntentUnknown
}
