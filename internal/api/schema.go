package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const classificationSchema = `{
  "type": "object",
  "required": ["question"],
  "properties": {
    "question": {"type": "string"}
  }
}`

const suggestionSchema = `{
  "type": "object",
  "required": ["question", "desired_level"],
  "properties": {
    "question": {"type": "string"},
    "desired_level": {"type": "string"}
  }
}`

// Bounds keep marks_per_unit * len(syllabus) well inside int range.
const generationSchema = `{
  "type": "object",
  "required": ["syllabus", "marking_scheme", "university", "degree", "branch", "year", "subject", "average_blooms_score"],
  "properties": {
    "syllabus": {
      "type": "array",
      "maxItems": 1000,
      "items": {
        "type": "object",
        "required": ["unit", "content"],
        "properties": {
          "unit": {"type": "integer"},
          "content": {"type": "string"}
        }
      }
    },
    "marking_scheme": {
      "type": "object",
      "required": ["marks_per_unit", "main_questions_per_unit", "sub_questions_per_main_question", "marks_per_main_question"],
      "properties": {
        "marks_per_unit": {"type": "integer", "minimum": 0, "maximum": 1000000},
        "main_questions_per_unit": {"type": "integer"},
        "sub_questions_per_main_question": {"type": "integer"},
        "marks_per_main_question": {"type": "integer"}
      }
    },
    "university": {"type": "string"},
    "degree": {"type": "string"},
    "branch": {"type": "string"},
    "year": {"type": "string"},
    "subject": {"type": "string"},
    "average_blooms_score": {"type": "integer"}
  }
}`

var (
	classificationValidator = mustCompile("classification", classificationSchema)
	suggestionValidator     = mustCompile("suggestion", suggestionSchema)
	generationValidator     = mustCompile("generation", generationSchema)

	errorPrinter = message.NewPrinter(language.English)
)

func mustCompile(name, src string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("parse %s schema: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		panic(fmt.Sprintf("add %s schema: %v", name, err))
	}
	schema, err := c.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return schema
}

// requestError is a rejected request body.
type requestError struct {
	status  int
	message string
	details []string
}

func (e *requestError) Error() string { return e.message }

// readBody reads the request body under limit and checks it against schema.
// It returns the raw bytes for decoding into the typed input.
func readBody(w http.ResponseWriter, r *http.Request, limit int64, schema *jsonschema.Schema) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &requestError{status: http.StatusRequestEntityTooLarge, message: "request body too large"}
		}
		return nil, &requestError{status: http.StatusBadRequest, message: "failed to read request body"}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, &requestError{status: http.StatusBadRequest, message: "invalid JSON body"}
	}

	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, &requestError{status: http.StatusUnprocessableEntity, message: "validation failed"}
		}
		return nil, &requestError{
			status:  http.StatusUnprocessableEntity,
			message: "validation failed",
			details: validationDetails(verr),
		}
	}
	return body, nil
}

// validationDetails flattens the leaf causes into "location: message" lines.
func validationDetails(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/" + strings.Join(verr.InstanceLocation, "/")
		return []string{loc + ": " + verr.ErrorKind.LocalizedString(errorPrinter)}
	}
	var out []string
	for _, cause := range verr.Causes {
		out = append(out, validationDetails(cause)...)
	}
	return out
}

func writeRequestError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	if !errors.As(err, &reqErr) {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(reqErr.details) == 0 {
		Error(w, reqErr.status, reqErr.message)
		return
	}
	JSON(w, reqErr.status, map[string]interface{}{
		"error":   reqErr.message,
		"details": reqErr.details,
	})
}
