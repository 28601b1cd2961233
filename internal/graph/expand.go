package graph

import (
	"fmt"

	"go-etl-pipeline/internal/model"
)

// Expand turns the two configuration tables into a task graph: one
// fetch→validate→transform→publish→load chain per resource and one summary
// task per summary, wired to the load stage of every declared dependency.
//
// The chain shape is fixed; the task count scales with the configuration
// tables. Resource chains no summary refers to are still emitted; they are
// simply leaves. Expand is side-effect free and deterministic: identical
// input yields identical node and edge order.
func Expand(resources []model.ResourceConfig, summaries []model.SummaryConfig) (*TaskGraph, error) {
	g := newTaskGraph()

	// First pass: one five-stage chain per resource.
	loadIDs := make(map[string]string, len(resources))
	for _, r := range resources {
		if _, dup := loadIDs[r.Name]; dup {
			return nil, &model.DuplicateNameError{Kind: "resource", Name: r.Name}
		}
		prev := ""
		for _, kind := range stageKinds {
			id := TaskID(r.Name, kind)
			g.add(&Task{ID: id, Kind: kind, Resource: r.Name})
			if prev != "" {
				g.addEdge(prev, id)
			}
			prev = id
		}
		loadIDs[r.Name] = prev // prev is now the load stage
	}

	// Second pass: summary nodes, linked to the load stages they wait on.
	seenSummaries := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		if seenSummaries[s.Name] {
			return nil, &model.DuplicateNameError{Kind: "summary", Name: s.Name}
		}
		seenSummaries[s.Name] = true

		if len(s.Deps) == 0 {
			return nil, &model.UnknownDependencyError{Summary: s.Name}
		}

		id := TaskID(s.Name, KindSummary)
		g.add(&Task{ID: id, Kind: KindSummary, Summary: s.Name})
		for _, dep := range s.Deps {
			loadID, ok := loadIDs[dep]
			if !ok {
				return nil, &model.UnknownDependencyError{Summary: s.Name, Dep: dep}
			}
			g.addEdge(loadID, id)
		}
	}

	// Edges only ever point forward (within a chain, or load → summary), so
	// the graph cannot cycle; verify the invariant anyway before handing the
	// graph to an executor.
	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// checkAcyclic runs Kahn's algorithm and fails if any task is unreachable
// from the sources.
func (g *TaskGraph) checkAcyclic() error {
	indegree := make(map[string]int, len(g.order))
	queue := make([]string, 0, len(g.order))
	for _, id := range g.order {
		indegree[id] = len(g.deps[id])
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range g.dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited != len(g.order) {
		return fmt.Errorf("task graph contains a cycle (%d of %d tasks reachable)", visited, len(g.order))
	}
	return nil
}
