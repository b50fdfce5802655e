package domain

// ClassificationInput is the body of POST /classify/.
type ClassificationInput struct {
	Question string `json:"question"`
}

// SuggestionInput is the body of POST /suggest/.
type SuggestionInput struct {
	Question     string `json:"question"`
	DesiredLevel string `json:"desired_level"`
}

// SyllabusUnit is one numbered unit of a course syllabus.
type SyllabusUnit struct {
	Unit    int    `json:"unit"`
	Content string `json:"content"`
}

// MarkingScheme describes how marks are spread across a paper.
type MarkingScheme struct {
	MarksPerUnit                int `json:"marks_per_unit"`
	MainQuestionsPerUnit        int `json:"main_questions_per_unit"`
	SubQuestionsPerMainQuestion int `json:"sub_questions_per_main_question"`
	MarksPerMainQuestion        int `json:"marks_per_main_question"`
}

// GenerationInput is the body of POST /generate/.
type GenerationInput struct {
	Syllabus           []SyllabusUnit `json:"syllabus"`
	MarkingScheme      MarkingScheme  `json:"marking_scheme"`
	University         string         `json:"university"`
	Degree             string         `json:"degree"`
	Branch             string         `json:"branch"`
	Year               string         `json:"year"`
	Subject            string         `json:"subject"`
	AverageBloomsScore int            `json:"average_blooms_score"`
}

// TotalMarks is the mark total the generated paper must add up to.
func (g GenerationInput) TotalMarks() int {
	return g.MarkingScheme.MarksPerUnit * len(g.Syllabus)
}
