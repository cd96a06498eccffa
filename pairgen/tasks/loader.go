package tasks

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/probelab/pairgen/pairgen/validate"
)

const defaultBatchSize = 10

// Task is one generation task configuration: the template fragments that
// surround a task phrase plus the seed material the generation layer uses.
type Task struct {
	TaskName               string        `yaml:"task_name"`
	Templates              TaskTemplates `yaml:"templates"`
	Examples               []ExamplePair `yaml:"examples"`
	GenerationInstructions string        `yaml:"generation_instructions"`
	BatchSize              int           `yaml:"batch_size"`
}

// TaskTemplates groups the two template variants of a task.
type TaskTemplates struct {
	SingleToken Fragment `yaml:"single_token"`
	MultiToken  Fragment `yaml:"multi_token"`
}

// Fragment is a prefix/suffix pair surrounding the task phrase.
type Fragment struct {
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
}

// ExamplePair is a seed (safe, harmful) phrase pair from the task file.
type ExamplePair struct {
	Safe    string `yaml:"safe"`
	Harmful string `yaml:"harmful"`
}

// ValidationTemplates projects the task's fragments onto the validator's
// template shape.
func (t *Task) ValidationTemplates() validate.Templates {
	return validate.Templates{
		SingleTokenPrefix: t.Templates.SingleToken.Prefix,
		SingleTokenSuffix: t.Templates.SingleToken.Suffix,
		MultiTokenPrefix:  t.Templates.MultiToken.Prefix,
		MultiTokenSuffix:  t.Templates.MultiToken.Suffix,
	}
}

// Loader reads task configurations from YAML files in a directory.
type Loader struct {
	taskDir string
}

// NewLoader creates a loader rooted at taskDir; task files live directly in
// that directory as <name>.yaml.
func NewLoader(taskDir string) *Loader {
	return &Loader{taskDir: taskDir}
}

// LoadTask loads a task configuration by name, validating required fields.
func (l *Loader) LoadTask(taskName string) (*Task, error) {
	taskPath := filepath.Join(l.taskDir, taskName+".yaml")

	data, err := os.ReadFile(taskPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("task configuration not found: %s", taskPath)
		}
		return nil, fmt.Errorf("failed to read task configuration %s: %w", taskPath, err)
	}

	var task Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task configuration %s: %w", taskPath, err)
	}

	if task.TaskName == "" {
		return nil, fmt.Errorf("missing required field in task config %s: task_name", taskPath)
	}
	if task.Templates == (TaskTemplates{}) {
		return nil, fmt.Errorf("missing required field in task config %s: templates", taskPath)
	}
	if len(task.Examples) == 0 {
		return nil, fmt.Errorf("missing required field in task config %s: examples", taskPath)
	}
	if task.GenerationInstructions == "" {
		return nil, fmt.Errorf("missing required field in task config %s: generation_instructions", taskPath)
	}

	if task.BatchSize <= 0 {
		task.BatchSize = defaultBatchSize
	}

	return &task, nil
}
