// Package catalog holds the static task, achievement, and badge definitions
// the platform ships with. The catalog is loaded once at startup from
// embedded JSON documents, validated against embedded JSON Schemas, and
// injected as immutable configuration into the services that need it.
package catalog

import (
	"bytes"
	"encoding/json"
	_ "embed"
	"fmt"
	"math/rand"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed data/tasks.json
var tasksData []byte

//go:embed data/tasks.schema.json
var tasksSchema []byte

//go:embed data/definitions.json
var definitionsData []byte

//go:embed data/definitions.schema.json
var definitionsSchema []byte

// Category groups tasks by the kind of environmental action.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// DifficultyLevel maps a difficulty id to the points it is worth.
type DifficultyLevel struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Task is a template students can pick up. Tasks never store a point value;
// points are resolved from the difficulty table at lookup time so that
// retuning the table retunes every task consistently.
type Task struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Difficulty   string `json:"difficulty"`
	Points       int    `json:"points"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Impact       string `json:"impact"`
	Tips         string `json:"tips"`
}

// TasksDocument is the shape of the embedded task catalog file.
type TasksDocument struct {
	Categories       []Category        `json:"categories"`
	DifficultyLevels []DifficultyLevel `json:"difficulty_levels"`
	Tasks            []Task            `json:"tasks"`
}

// DefinitionsDocument is the shape of the embedded achievement/badge file.
type DefinitionsDocument struct {
	Achievements []AchievementDefinition `json:"achievements"`
	Badges       []BadgeDefinition       `json:"badges"`
}

// Catalog exposes read-only lookups over the platform's static data.
type Catalog struct {
	categories   []Category
	levels       []DifficultyLevel
	tasks        []Task
	achievements []AchievementDefinition
	badges       []BadgeDefinition
}

// New builds a catalog from already-parsed documents. The difficulty slice is
// retained by reference; lookups consult it on every call.
func New(tasks TasksDocument, definitions DefinitionsDocument) *Catalog {
	return &Catalog{
		categories:   tasks.Categories,
		levels:       tasks.DifficultyLevels,
		tasks:        tasks.Tasks,
		achievements: definitions.Achievements,
		badges:       definitions.Badges,
	}
}

// Load parses and validates the embedded catalog documents.
func Load() (*Catalog, error) {
	var tasksDoc TasksDocument
	if err := parseValidated("tasks.schema.json", tasksSchema, tasksData, &tasksDoc); err != nil {
		return nil, fmt.Errorf("task catalog: %w", err)
	}

	var definitionsDoc DefinitionsDocument
	if err := parseValidated("definitions.schema.json", definitionsSchema, definitionsData, &definitionsDoc); err != nil {
		return nil, fmt.Errorf("definition catalog: %w", err)
	}

	return New(tasksDoc, definitionsDoc), nil
}

func parseValidated(schemaName string, schemaData, document []byte, out interface{}) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(schemaData)); err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	schema, err := compiler.Compile(schemaName)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	var raw interface{}
	if err := json.Unmarshal(document, &raw); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}

	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return json.Unmarshal(document, out)
}

// Categories returns the task categories in declaration order.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// DifficultyLevels returns the difficulty table in declaration order.
func (c *Catalog) DifficultyLevels() []DifficultyLevel {
	return c.levels
}

// PointsForDifficulty resolves the current point value of a difficulty id.
func (c *Catalog) PointsForDifficulty(difficultyID string) int {
	for _, level := range c.levels {
		if level.ID == difficultyID {
			return level.Points
		}
	}
	return 0
}

// TaskByID returns the task template with its point value resolved from the
// difficulty table at call time.
func (c *Catalog) TaskByID(id string) (Task, bool) {
	for _, task := range c.tasks {
		if task.ID == id {
			return c.withPoints(task), true
		}
	}
	return Task{}, false
}

// TasksByCategory returns all tasks in the category, points resolved.
func (c *Catalog) TasksByCategory(categoryID string) []Task {
	matched := make([]Task, 0, len(c.tasks))
	for _, task := range c.tasks {
		if task.Category == categoryID {
			matched = append(matched, c.withPoints(task))
		}
	}
	return matched
}

// TasksByDifficulty returns all tasks at the difficulty, points resolved.
func (c *Catalog) TasksByDifficulty(difficultyID string) []Task {
	matched := make([]Task, 0, len(c.tasks))
	for _, task := range c.tasks {
		if task.Difficulty == difficultyID {
			matched = append(matched, c.withPoints(task))
		}
	}
	return matched
}

// RandomTasks returns a uniform sample without replacement of size
// min(n, catalog size), points resolved.
func (c *Catalog) RandomTasks(n int) []Task {
	if n <= 0 {
		return []Task{}
	}
	if n > len(c.tasks) {
		n = len(c.tasks)
	}

	sampled := make([]Task, 0, n)
	for _, idx := range rand.Perm(len(c.tasks))[:n] {
		sampled = append(sampled, c.withPoints(c.tasks[idx]))
	}
	return sampled
}

// Achievements returns the achievement definitions in declaration order.
func (c *Catalog) Achievements() []AchievementDefinition {
	return c.achievements
}

// Badges returns the badge definitions in declaration order.
func (c *Catalog) Badges() []BadgeDefinition {
	return c.badges
}

func (c *Catalog) withPoints(task Task) Task {
	task.Points = c.PointsForDifficulty(task.Difficulty)
	return task
}
