package nav

import (
	"errors"
	"strings"
	"testing"

	"voicedesk-agent/internal/activity"
)

func TestNavigateResolvesCaseInsensitively(t *testing.T) {
	tests := []struct {
		screen   string
		wantPath string
	}{
		{"home", "/"},
		{"HOME", "/"},
		{"services", "/(tabs)/services"},
		{"Services", "/(tabs)/services"},
		{"intake", "/(tabs)/intake"},
		{"INTAKE", "/(tabs)/intake"},
		{"  intake  ", "/(tabs)/intake"},
	}

	for _, tt := range tests {
		t.Run(tt.screen, func(t *testing.T) {
			var gotPath string
			log := activity.NewLog()
			b := NewBridge(func(path string) { gotPath = path }, log)

			result, err := b.Navigate(tt.screen)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("navigated to %q, want %q", gotPath, tt.wantPath)
			}
			if !strings.Contains(result, "Navigated to") {
				t.Errorf("result = %q", result)
			}
			if log.Len() != 1 {
				t.Errorf("expected one log entry, got %d", log.Len())
			}
		})
	}
}

func TestNavigateLogsAsToolSource(t *testing.T) {
	log := activity.NewLog()
	b := NewBridge(func(string) {}, log)

	if _, err := b.Navigate("intake"); err != nil {
		t.Fatal(err)
	}

	entry := log.Entries()[0]
	if entry.Source != activity.SourceTool {
		t.Errorf("source = %q, want tool", entry.Source)
	}
	if !strings.Contains(entry.Text, "intake") {
		t.Errorf("entry text = %q", entry.Text)
	}
}

func TestNavigateUnknownScreen(t *testing.T) {
	log := activity.NewLog()
	called := false
	b := NewBridge(func(string) { called = true }, log)

	_, err := b.Navigate("garage")
	if err == nil {
		t.Fatal("expected an error")
	}

	var unsupported *UnsupportedScreenError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedScreenError, got %T", err)
	}
	if unsupported.Screen != "garage" {
		t.Errorf("screen = %q", unsupported.Screen)
	}
	for _, valid := range []string{"home", "intake", "services"} {
		if !strings.Contains(err.Error(), valid) {
			t.Errorf("error should enumerate %q: %s", valid, err)
		}
	}
	if called {
		t.Error("navigation callback must not fire on failure")
	}
	if log.Len() != 0 {
		t.Errorf("failed navigation should not log, got %d entries", log.Len())
	}
}

func TestValidScreens(t *testing.T) {
	got := ValidScreens()
	want := []string{"home", "intake", "services"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ValidScreens()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDescribeScreen(t *testing.T) {
	tests := []struct {
		screen string
		want   string
	}{
		{"services", "services"},
		{"intake", "intake form"},
		{"home", "home"},
		{"", "home"},
		{"anything-else", "home"},
		{"SERVICES", "services"},
	}
	for _, tt := range tests {
		if got := DescribeScreen(tt.screen); got != tt.want {
			t.Errorf("DescribeScreen(%q) = %q, want %q", tt.screen, got, tt.want)
		}
	}
}
