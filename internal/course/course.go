package course

import (
	"encoding/json"
	"fmt"
)

// TaskType identifies the answer-capture widget a task requires.
type TaskType string

const (
	TypeMultipleChoice TaskType = "multiple_choice"
	TypeTrueFalse      TaskType = "true_false"
	TypeTextInput      TaskType = "text_input"
	TypeCode           TaskType = "code"
	TypeFillInBlank    TaskType = "fill_in_blank"
	TypeConstructor    TaskType = "constructor"
	TypeSpeedTyping    TaskType = "speed_typing"
)

// AllTaskTypes returns every known task type.
func AllTaskTypes() []TaskType {
	return []TaskType{
		TypeMultipleChoice,
		TypeTrueFalse,
		TypeTextInput,
		TypeCode,
		TypeFillInBlank,
		TypeConstructor,
		TypeSpeedTyping,
	}
}

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse, TypeTextInput, TypeCode,
		TypeFillInBlank, TypeConstructor, TypeSpeedTyping:
		return true
	}
	return false
}

// Hint is an optional nudge attached to a task. Requesting it costs XP,
// which the server accounts for.
type Hint struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	XPPenalty int    `json:"xp_penalty"`
}

// Task is a single graded question. The options payload is shaped by the
// task type: a key→label map for choice tasks, a fragment list for
// constructor tasks, absent otherwise. CorrectAnswer is authoritative only
// server-side; the client uses it purely as a display fallback after a
// check, and as the reference text for speed-typing tasks.
type Task struct {
	ID            int             `json:"id"`
	Type          TaskType        `json:"task_type"`
	Question      string          `json:"question"`
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectAnswer string          `json:"correct_answer,omitempty"`
	CodeTemplate  string          `json:"code_template,omitempty"`
	TimeLimit     int             `json:"time_limit,omitempty"`
	Hints         []Hint          `json:"hints,omitempty"`
}

// ChoiceOptions decodes the options payload of a choice task into a
// key→label map.
func (t Task) ChoiceOptions() (map[string]string, error) {
	if len(t.Options) == 0 {
		return nil, fmt.Errorf("task %d: no options payload", t.ID)
	}
	var m map[string]string
	if err := json.Unmarshal(t.Options, &m); err != nil {
		return nil, fmt.Errorf("task %d: decode choice options: %w", t.ID, err)
	}
	return m, nil
}

// ConstructorFragments decodes the options payload of a constructor task
// into its unordered fragment list.
func (t Task) ConstructorFragments() ([]string, error) {
	if len(t.Options) == 0 {
		return nil, fmt.Errorf("task %d: no options payload", t.ID)
	}
	var wrapper struct {
		Options []string `json:"options"`
	}
	if err := json.Unmarshal(t.Options, &wrapper); err != nil {
		return nil, fmt.Errorf("task %d: decode constructor options: %w", t.ID, err)
	}
	return wrapper.Options, nil
}

// BlockType tags a theory content block.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockCode    BlockType = "code"
	BlockImage   BlockType = "image"
	BlockAlert   BlockType = "alert"
	BlockDetails BlockType = "details"
	BlockDivider BlockType = "divider"
)

// AlertStyle controls how an alert block is colored.
type AlertStyle string

const (
	AlertInfo    AlertStyle = "info"
	AlertSuccess AlertStyle = "success"
	AlertWarning AlertStyle = "warning"
	AlertDanger  AlertStyle = "danger"
)

// ContentBlock is one step of a lesson's theory sequence.
type ContentBlock struct {
	Type     BlockType  `json:"type"`
	Content  string     `json:"content,omitempty"`
	Language string     `json:"language,omitempty"`
	URL      string     `json:"url,omitempty"`
	Caption  string     `json:"caption,omitempty"`
	Summary  string     `json:"summary,omitempty"`
	Style    AlertStyle `json:"style,omitempty"`
}

// Lesson is the unit of completion: an ordered theory sequence followed by
// an ordered task sequence.
type Lesson struct {
	ID       int            `json:"id"`
	Title    string         `json:"title"`
	Theory   []ContentBlock `json:"theory_content"`
	XPReward int            `json:"xp_reward"`
	Tasks    []Task         `json:"tasks"`
}

// Skill is a node in the course topic tree. Children and lessons are
// immutable once fetched.
type Skill struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Children []Skill  `json:"children"`
	Lessons  []Lesson `json:"lessons"`
}

// Course is the catalog entry shown on the course list.
type Course struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Detail is the full course payload: catalog fields plus the skill tree.
type Detail struct {
	Course
	Skills []Skill `json:"skills"`
}

// FindLesson walks the skill tree looking for a lesson by ID. Returns nil
// if the lesson is not part of this course.
func (d *Detail) FindLesson(lessonID int) *Lesson {
	return findLesson(d.Skills, lessonID)
}

func findLesson(skills []Skill, lessonID int) *Lesson {
	for i := range skills {
		for j := range skills[i].Lessons {
			if skills[i].Lessons[j].ID == lessonID {
				return &skills[i].Lessons[j]
			}
		}
		if l := findLesson(skills[i].Children, lessonID); l != nil {
			return l
		}
	}
	return nil
}
