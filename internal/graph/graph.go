package graph

// Kind discriminates the task variants. The five stage kinds form one chain
// per resource; summaries sit downstream of load stages.
type Kind int

const (
	KindFetch Kind = iota
	KindValidate
	KindTransform
	KindPublish
	KindLoad
	KindSummary
)

var kindNames = [...]string{"fetch", "validate", "transform", "publish", "load", "summary"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[int(k)]
}

// stageKinds is the fixed shape of every resource chain, in order.
var stageKinds = []Kind{KindFetch, KindValidate, KindTransform, KindPublish, KindLoad}

// Task is one node of the graph. It carries the configuration key it was
// instantiated for rather than closures, so the graph stays a plain data
// structure the executor can inspect and log.
type Task struct {
	ID       string // "<resource>/<stage>" or "<summary>/summary"
	Kind     Kind
	Resource string // resource name; empty for summary tasks
	Summary  string // summary name; empty for stage tasks
}

// TaskGraph is the read-only artifact produced by Expand. Nodes live in an
// arena keyed by task ID; edges are adjacency lists in both directions.
type TaskGraph struct {
	tasks      map[string]*Task
	order      []string // insertion order, for deterministic iteration
	deps       map[string][]string
	dependents map[string][]string
}

func newTaskGraph() *TaskGraph {
	return &TaskGraph{
		tasks:      make(map[string]*Task),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

func (g *TaskGraph) add(t *Task) {
	g.tasks[t.ID] = t
	g.order = append(g.order, t.ID)
}

// addEdge records that `to` must wait for `from`.
func (g *TaskGraph) addEdge(from, to string) {
	g.deps[to] = append(g.deps[to], from)
	g.dependents[from] = append(g.dependents[from], to)
}

// Len returns the number of tasks.
func (g *TaskGraph) Len() int {
	return len(g.order)
}

// Task looks up a task by ID.
func (g *TaskGraph) Task(id string) (*Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Tasks returns all tasks in deterministic (insertion) order.
func (g *TaskGraph) Tasks() []*Task {
	out := make([]*Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id])
	}
	return out
}

// Deps returns the IDs a task must wait for.
func (g *TaskGraph) Deps(id string) []string {
	return g.deps[id]
}

// Dependents returns the IDs waiting on a task.
func (g *TaskGraph) Dependents(id string) []string {
	return g.dependents[id]
}

// TaskID builds the canonical node ID for a config name and kind.
func TaskID(name string, kind Kind) string {
	return name + "/" + kind.String()
}
