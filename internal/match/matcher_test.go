package match

import (
	"context"
	"testing"
)

var slotCandidates = []Candidate{
	{ID: 37, Name: "아침"},
	{ID: 38, Name: "점심"},
	{ID: 39, Name: "저녁"},
}

// --- Normalize ---

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"아침", "아침"},
		{"아침약", "아침"},
		{" 저녁약 ", "저녁"},
		{"Morning", "morning"},
		{"약", ""},
		{"", ""},
		{"감기약", "감기"}, // suffix strip is positional, not semantic
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// --- NormalizeMatcher ---

func TestNormalizeMatcher_ExactAndSuffix(t *testing.T) {
	m := NormalizeMatcher{}
	results, err := m.Match(context.Background(), slotCandidates, []string{"아침", "저녁약", "밤"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	if !results[0].Found || results[0].ID != 37 {
		t.Errorf("아침 → %+v, want id 37", results[0])
	}
	if !results[1].Found || results[1].ID != 39 {
		t.Errorf("저녁약 → %+v, want id 39", results[1])
	}
	if results[2].Found {
		t.Errorf("밤 → %+v, want not found", results[2])
	}
}

func TestNormalizeMatcher_EmptyCandidates(t *testing.T) {
	m := NormalizeMatcher{}
	results, _ := m.Match(context.Background(), nil, []string{"아침"})
	if results[0].Found {
		t.Errorf("expected not found with empty candidate set, got %+v", results[0])
	}
}

func TestNormalizeMatcher_FirstDuplicateWins(t *testing.T) {
	dup := []Candidate{
		{ID: 1, Name: "아침"},
		{ID: 2, Name: "아침"},
	}
	m := NormalizeMatcher{}
	results, _ := m.Match(context.Background(), dup, []string{"아침약"})
	if !results[0].Found || results[0].ID != 1 {
		t.Errorf("got %+v, want first candidate (id 1)", results[0])
	}
}

func TestNormalizeMatcher_Idempotent(t *testing.T) {
	m := NormalizeMatcher{}
	queries := []string{"아침약", "저녁", "없는이름"}

	first, _ := m.Match(context.Background(), slotCandidates, queries)
	second, _ := m.Match(context.Background(), slotCandidates, queries)

	for i := range queries {
		if first[i] != second[i] {
			t.Errorf("query %q resolved differently: %+v vs %+v", queries[i], first[i], second[i])
		}
	}
}

// --- parseIDArray ---

func TestParseIDArray(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    int
		wantErr bool
	}{
		{"plain array", "[37, -1]", 2, false},
		{"fenced array", "```json\n[37]\n```", 1, false},
		{"bare fence", "```\n[37, 38]\n```", 2, false},
		{"not json", "the best match is 37", 1, true},
		{"object not array", `{"ids":[37]}`, 1, true},
		{"wrong length", "[37]", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseIDArray(tt.reply, tt.want)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseIDArray(%q, %d) err = %v, wantErr %v", tt.reply, tt.want, err, tt.wantErr)
			}
		})
	}
}
