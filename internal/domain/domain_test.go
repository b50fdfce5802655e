package domain

import "testing"

func TestParseBloomLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  BloomLevel
		found bool
	}{
		{"REMEMBER", LevelRemember, true},
		{"analyze", LevelAnalyze, true},
		{"Bloom's Taxonomy Level: Evaluate\n", LevelEvaluate, true},
		{"Current Level: Remember \n Modified Question: How can paging be applied?", LevelRemember, true},
		{"Analyse", LevelAnalyze, true},
		{"no idea", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseBloomLevel(tt.in)
		if ok != tt.found || got != tt.want {
			t.Errorf("ParseBloomLevel(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.found)
		}
	}
}

func TestBloomLevelRank(t *testing.T) {
	if LevelRemember.Rank() != 1 || LevelCreate.Rank() != 6 {
		t.Fatalf("unexpected ranks: %d, %d", LevelRemember.Rank(), LevelCreate.Rank())
	}
	if BloomLevel("GUESS").Rank() != 0 {
		t.Fatal("expected unknown level to rank 0")
	}
}

func TestTotalMarks(t *testing.T) {
	in := GenerationInput{
		Syllabus: []SyllabusUnit{
			{Unit: 1, Content: "Neural networks"},
			{Unit: 2, Content: "Linear algebra"},
			{Unit: 3, Content: "Optimisation"},
		},
		MarkingScheme: MarkingScheme{MarksPerUnit: 80},
	}
	if got := in.TotalMarks(); got != 240 {
		t.Fatalf("TotalMarks() = %d, want 240", got)
	}

	in.Syllabus = nil
	if got := in.TotalMarks(); got != 0 {
		t.Fatalf("TotalMarks() with empty syllabus = %d, want 0", got)
	}
}

func TestConversationHistory(t *testing.T) {
	c := Conversation{
		Seed:  []Turn{{Role: RoleUser, Text: "seed"}, {Role: RoleModel, Text: "ok"}},
		Turns: []Turn{{Role: RoleUser, Text: "q"}},
	}
	h := c.History()
	if len(h) != 3 || h[0].Text != "seed" || h[2].Text != "q" {
		t.Fatalf("unexpected history: %+v", h)
	}
}
