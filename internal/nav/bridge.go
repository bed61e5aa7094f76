package nav

import (
	"fmt"
	"sort"
	"strings"

	"voicedesk-agent/internal/activity"
)

// Screen names are matched case-insensitively against this fixed table.
var screenRoutes = map[string]string{
	"home":     "/",
	"services": "/(tabs)/services",
	"intake":   "/(tabs)/intake",
}

// UnsupportedScreenError names the invalid input and enumerates the
// valid screen set.
type UnsupportedScreenError struct {
	Screen string
	Valid  []string
}

func (e *UnsupportedScreenError) Error() string {
	return fmt.Sprintf("unsupported screen %q; valid options are %s",
		e.Screen, strings.Join(e.Valid, ", "))
}

// ValidScreens returns the supported screen names in sorted order.
func ValidScreens() []string {
	names := make([]string, 0, len(screenRoutes))
	for name := range screenRoutes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DescribeScreen renders a screen name in natural language for
// contextual updates to the remote agent.
func DescribeScreen(screen string) string {
	switch strings.ToLower(screen) {
	case "services":
		return "services"
	case "intake":
		return "intake form"
	default:
		return "home"
	}
}

// Bridge resolves logical screen names to routing targets and hands
// them to an injected navigation callback.
type Bridge struct {
	navigate func(path string)
	log      *activity.Log
}

// NewBridge wires the bridge to the host's navigation callback and the
// shared activity log.
func NewBridge(navigate func(path string), log *activity.Log) *Bridge {
	return &Bridge{navigate: navigate, log: log}
}

// Navigate resolves screen (case-insensitive) and invokes the
// navigation callback with the routing target. It records the
// navigation as agent-initiated in the activity log.
func (b *Bridge) Navigate(screen string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(screen))
	path, ok := screenRoutes[normalized]
	if !ok {
		return "", &UnsupportedScreenError{Screen: screen, Valid: ValidScreens()}
	}

	if b.navigate != nil {
		b.navigate(path)
	}
	b.log.Append(activity.SourceTool,
		fmt.Sprintf("Voice agent requested navigation to %s screen.", normalized))

	return fmt.Sprintf("Navigated to %s.", normalized), nil
}
