// Package prompt renders the instruction templates sent to the model and
// holds the few-shot history each endpoint's sessions start from.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/ashureev/bloomify/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("prompts").ParseFS(templateFS, "templates/*.tmpl"))

const (
	classifyTemplate = "classify.tmpl"
	suggestTemplate  = "suggest.tmpl"
	generateTemplate = "generate.tmpl"
)

// generationData is the flattened view the generation template reads.
type generationData struct {
	University                  string
	Degree                      string
	Year                        string
	Branch                      string
	Subject                     string
	Syllabus                    string
	TotalMarks                  int
	MarksPerUnit                int
	MainQuestionsPerUnit        int
	MarksPerMainQuestion        int
	SubQuestionsPerMainQuestion int
	AverageBloomsScore          int
}

// Classification renders the prompt asking for a question's Bloom level.
func Classification(in domain.ClassificationInput) (string, error) {
	return render(classifyTemplate, in)
}

// Suggestion renders the prompt asking for a question rewritten to a target level.
func Suggestion(in domain.SuggestionInput) (string, error) {
	return render(suggestTemplate, in)
}

// Generation renders the exam-paper prompt.
func Generation(in domain.GenerationInput) (string, error) {
	return render(generateTemplate, generationData{
		University:                  in.University,
		Degree:                      in.Degree,
		Year:                        in.Year,
		Branch:                      in.Branch,
		Subject:                     in.Subject,
		Syllabus:                    FormatSyllabus(in.Syllabus),
		TotalMarks:                  in.TotalMarks(),
		MarksPerUnit:                in.MarkingScheme.MarksPerUnit,
		MainQuestionsPerUnit:        in.MarkingScheme.MainQuestionsPerUnit,
		MarksPerMainQuestion:        in.MarkingScheme.MarksPerMainQuestion,
		SubQuestionsPerMainQuestion: in.MarkingScheme.SubQuestionsPerMainQuestion,
		AverageBloomsScore:          in.AverageBloomsScore,
	})
}

// FormatSyllabus renders units as "Unit 1: ...; Unit 2: ...".
func FormatSyllabus(units []domain.SyllabusUnit) string {
	parts := make([]string, 0, len(units))
	for _, u := range units {
		parts = append(parts, "Unit "+strconv.Itoa(u.Unit)+": "+strings.TrimSpace(u.Content))
	}
	return strings.Join(parts, "; ")
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
