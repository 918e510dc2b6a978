package course

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// detailSchema constrains the course detail payload enough to catch
// truncated or mis-shaped responses before they reach a screen. Task
// options stay loose on purpose: their shape depends on task_type and is
// decoded lazily by the typed accessors.
const detailSchema = `{
  "type": "object",
  "required": ["id", "title", "skills"],
  "properties": {
    "id": {"type": "integer"},
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "skills": {
      "type": "array",
      "items": {"$ref": "#/$defs/skill"}
    }
  },
  "$defs": {
    "skill": {
      "type": "object",
      "required": ["id", "title"],
      "properties": {
        "id": {"type": "integer"},
        "title": {"type": "string"},
        "children": {
          "type": "array",
          "items": {"$ref": "#/$defs/skill"}
        },
        "lessons": {
          "type": "array",
          "items": {"$ref": "#/$defs/lesson"}
        }
      }
    },
    "lesson": {
      "type": "object",
      "required": ["id", "title"],
      "properties": {
        "id": {"type": "integer"},
        "title": {"type": "string"},
        "xp_reward": {"type": "integer"},
        "theory_content": {"type": "array"},
        "tasks": {
          "type": "array",
          "items": {"$ref": "#/$defs/task"}
        }
      }
    },
    "task": {
      "type": "object",
      "required": ["id", "task_type", "question"],
      "properties": {
        "id": {"type": "integer"},
        "task_type": {
          "enum": [
            "multiple_choice", "true_false", "text_input", "code",
            "fill_in_blank", "constructor", "speed_typing"
          ]
        },
        "question": {"type": "string"}
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledDetail *jsonschema.Schema
	compileErr     error
)

func compiledDetailSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var parsed any
		if err := json.Unmarshal([]byte(detailSchema), &parsed); err != nil {
			compileErr = fmt.Errorf("parse course schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://course-detail.json", parsed); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledDetail, compileErr = c.Compile("schema://course-detail.json")
	})
	return compiledDetail, compileErr
}

// ValidateDetail checks a raw course detail payload against the embedded
// schema. A non-nil error means the payload must not be rendered.
func ValidateDetail(raw []byte) error {
	sch, err := compiledDetailSchema()
	if err != nil {
		return err
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("course payload is not valid JSON: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return fmt.Errorf("course payload failed validation: %w", err)
	}
	return nil
}
