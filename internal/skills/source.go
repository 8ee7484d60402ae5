package skills

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidSource is returned when a skill source document does not match the schema.
var ErrInvalidSource = errors.New("invalid skill source")

const sourceSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["skills"],
  "properties": {
    "title": {"type": "string"},
    "context": {"type": "string"},
    "skills": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "domains": {"type": "array", "items": {"type": "string"}},
          "description": {"type": "string"},
          "importance": {"type": "number", "minimum": 0}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(sourceSchema)

// Source is a job posting or candidate profile as seen by the matcher.
type Source struct {
	Title string `json:"title,omitempty"`
	// Context is free text passed to the judgment service, usually the job description.
	Context string  `json:"context,omitempty"`
	Skills  []Skill `json:"skills"`
}

// LoadFile reads and validates a skill source document.
func LoadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skill source %q: %w", path, err)
	}

	return Parse(data)
}

// Parse validates data against the source schema and decodes it.
func Parse(data []byte) (*Source, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			violations = append(violations, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, strings.Join(violations, "; "))
	}

	var src Source
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	return &src, nil
}
