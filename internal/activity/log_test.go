package activity

import (
	"fmt"
	"testing"
)

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	l := NewLog()
	entry := l.Append(SourceSystem, "hello")

	if entry.ID == "" {
		t.Error("expected an id")
	}
	if entry.Timestamp == "" {
		t.Error("expected a timestamp")
	}
	if entry.Source != SourceSystem {
		t.Errorf("source = %q", entry.Source)
	}
	if entry.Text != "hello" {
		t.Errorf("text = %q", entry.Text)
	}
}

func TestNewestFirstOrder(t *testing.T) {
	l := NewLog()
	l.Append(SourceUser, "first")
	l.Append(SourceAgent, "second")
	l.Append(SourceTool, "third")

	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Text != "third" || entries[1].Text != "second" || entries[2].Text != "first" {
		t.Errorf("wrong order: %q, %q, %q", entries[0].Text, entries[1].Text, entries[2].Text)
	}
}

func TestCapacityEvictsOldestFirst(t *testing.T) {
	l := NewLog()
	for i := 0; i < MaxEntries+10; i++ {
		l.Append(SourceSystem, fmt.Sprintf("entry %d", i))
	}

	entries := l.Entries()
	if len(entries) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(entries))
	}

	// Newest survives at the head; the 10 oldest were evicted.
	if entries[0].Text != fmt.Sprintf("entry %d", MaxEntries+9) {
		t.Errorf("head = %q", entries[0].Text)
	}
	if entries[MaxEntries-1].Text != "entry 10" {
		t.Errorf("tail = %q, want entry 10", entries[MaxEntries-1].Text)
	}
}

func TestUniqueIDs(t *testing.T) {
	l := NewLog()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		entry := l.Append(SourceSystem, "x")
		if seen[entry.ID] {
			t.Fatalf("duplicate id %q", entry.ID)
		}
		seen[entry.ID] = true
	}
}

func TestRecent(t *testing.T) {
	l := NewLog()
	for i := 0; i < 5; i++ {
		l.Append(SourceSystem, fmt.Sprintf("entry %d", i))
	}

	tests := []struct {
		k    int
		want int
	}{
		{0, 0},
		{3, 3},
		{5, 5},
		{99, 5},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := len(l.Recent(tt.k)); got != tt.want {
			t.Errorf("Recent(%d) returned %d entries, want %d", tt.k, got, tt.want)
		}
	}

	recent := l.Recent(2)
	if recent[0].Text != "entry 4" || recent[1].Text != "entry 3" {
		t.Errorf("Recent(2) = %q, %q", recent[0].Text, recent[1].Text)
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Append(SourceSystem, "original")

	entries := l.Entries()
	entries[0].Text = "mutated"

	if l.Entries()[0].Text != "original" {
		t.Error("caller mutation leaked into the log")
	}
}
