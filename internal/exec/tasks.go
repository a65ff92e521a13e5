package exec

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/simonhull/zmkgen/internal/logger"
)

// Task is a named west step run in a config repo, such as "update".
type Task struct {
	Name        string
	Description string
	Run         func(ctx context.Context, w *West) error
}

// TaskRegistry holds tasks by name.
type TaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{tasks: make(map[string]Task)}
}

// Register adds a task. Names must be unique.
func (r *TaskRegistry) Register(t Task) error {
	if t.Name == "" {
		return fmt.Errorf("cannot register a task without a name")
	}
	if t.Run == nil {
		return fmt.Errorf("task %q has nothing to run", t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[t.Name]; exists {
		return fmt.Errorf("task %q is already registered", t.Name)
	}
	r.tasks[t.Name] = t
	return nil
}

// Lookup returns the task called name.
func (r *TaskRegistry) Lookup(name string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// Tasks returns every task sorted by name.
func (r *TaskRegistry) Tasks() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run runs the task called name with west on e.
func (r *TaskRegistry) Run(ctx context.Context, name string, e *Executor) error {
	t, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	logger.Debug("running west task", logger.F("task", t.Name), logger.F("dir", e.Dir()))
	return t.Run(ctx, NewWest(e))
}

var westTasks = NewTaskRegistry()

func init() {
	for _, t := range []Task{
		{
			Name:        "init",
			Description: "Initialize the west workspace from config/west.yml",
			Run: func(ctx context.Context, w *West) error {
				return w.Init(ctx, "config")
			},
		},
		{
			Name:        "update",
			Description: "Fetch ZMK, Zephyr and modules, then export Zephyr",
			Run: func(ctx context.Context, w *West) error {
				if err := w.Update(ctx); err != nil {
					return err
				}
				return w.ZephyrExport(ctx)
			},
		},
	} {
		if err := westTasks.Register(t); err != nil {
			panic(err)
		}
	}
}

// WestTasks returns the built-in west tasks.
func WestTasks() []Task {
	return westTasks.Tasks()
}

// RunTask runs a built-in west task.
func RunTask(ctx context.Context, name string, e *Executor) error {
	return westTasks.Run(ctx, name, e)
}
