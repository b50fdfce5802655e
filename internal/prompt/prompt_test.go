package prompt

import (
	"strings"
	"testing"

	"github.com/ashureev/bloomify/internal/domain"
)

func TestClassification(t *testing.T) {
	got, err := Classification(domain.ClassificationInput{Question: "Define frame buffer"})
	if err != nil {
		t.Fatalf("Classification failed: %v", err)
	}
	if !strings.Contains(got, "Question: Define frame buffer") {
		t.Errorf("expected question in prompt, got:\n%s", got)
	}
	if !strings.HasSuffix(got, "Bloom's Taxonomy Level: ") {
		t.Errorf("expected prompt to end with the level cue, got suffix %q", got[len(got)-30:])
	}
}

func TestSuggestion(t *testing.T) {
	got, err := Suggestion(domain.SuggestionInput{Question: "Define paging.", DesiredLevel: "APPLY"})
	if err != nil {
		t.Fatalf("Suggestion failed: %v", err)
	}
	if !strings.Contains(got, "Question: Define paging.") {
		t.Errorf("expected question in prompt")
	}
	if !strings.Contains(got, "Desired Bloom's Taxonomy Level: APPLY") {
		t.Errorf("expected desired level in prompt")
	}
	if !strings.HasSuffix(got, "Transformed Question: ") {
		t.Errorf("expected prompt to end with the transformation cue")
	}
}

func TestGeneration(t *testing.T) {
	in := domain.GenerationInput{
		Syllabus: []domain.SyllabusUnit{
			{Unit: 1, Content: "Neural networks"},
			{Unit: 2, Content: "Linear algebra "},
			{Unit: 3, Content: "Optimisation"},
		},
		MarkingScheme: domain.MarkingScheme{
			MarksPerUnit:                80,
			MainQuestionsPerUnit:        2,
			SubQuestionsPerMainQuestion: 3,
			MarksPerMainQuestion:        14,
		},
		University:         "SPPU",
		Degree:             "B.E.",
		Branch:             "AI&DS",
		Year:               "Second Year",
		Subject:            "Machine Learning",
		AverageBloomsScore: 3,
	}

	got, err := Generation(in)
	if err != nil {
		t.Fatalf("Generation failed: %v", err)
	}

	want := []string{
		"* University: SPPU",
		"* Degree: B.E.",
		"* Branch: AI&DS",
		"* Syllabus : Unit 1: Neural networks; Unit 2: Linear algebra; Unit 3: Optimisation",
		"* Total Marks: 240",
		"* Main Questions Per Unit: 2",
		"* Marks Per Main Question: 14",
		"* Sub-questions Per Main Question: 3",
		"* Average Blooms Score: 3",
		"must sum up to 240 and for each question must be 14",
		"`a = [1, 2, 3]`",
		`$$a \cdot b = \sum_{i=1}^{n} a_i b_i$$`,
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("expected generation prompt to contain %q", w)
		}
	}
	if strings.Contains(got, "{{") {
		t.Error("unrendered template action left in prompt")
	}
}

func TestFormatSyllabusEmpty(t *testing.T) {
	if got := FormatSyllabus(nil); got != "" {
		t.Fatalf("expected empty syllabus, got %q", got)
	}
}

func TestSeed(t *testing.T) {
	classify := Seed(domain.EndpointClassify)
	if len(classify) != 10 {
		t.Fatalf("expected 10 classify seed turns, got %d", len(classify))
	}
	for i, turn := range classify {
		wantRole := domain.RoleUser
		if i%2 == 1 {
			wantRole = domain.RoleModel
		}
		if turn.Role != wantRole {
			t.Fatalf("turn %d: expected role %s, got %s", i, wantRole, turn.Role)
		}
	}

	suggest := Seed(domain.EndpointSuggest)
	if len(suggest) != 4 {
		t.Fatalf("expected 4 suggest seed turns, got %d", len(suggest))
	}

	if got := Seed(domain.EndpointGenerate); len(got) != 0 {
		t.Fatalf("expected empty generate seed, got %d turns", len(got))
	}

	// Callers own the returned slice.
	classify[0].Text = "mutated"
	if Seed(domain.EndpointClassify)[0].Text == "mutated" {
		t.Fatal("Seed returned shared backing array")
	}
}
