package planner

import (
	"container/heap"

	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/model"
)

// DependencyGraph orders keys so that every key follows its dependencies.
type DependencyGraph struct {
	nodes map[model.Key]*node
	order []model.Key // Preserve registration order
}

type node struct {
	key          model.Key
	dependencies []model.Key
}

// NewDependencyGraph creates a new dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[model.Key]*node),
		order: make([]model.Key, 0),
	}
}

// AddNode adds a node with its dependencies.
// Nodes are visited in the order they are added when no dependency constrains them.
func (g *DependencyGraph) AddNode(key model.Key, dependencies []model.Key) {
	if _, exists := g.nodes[key]; !exists {
		g.order = append(g.order, key)
	}
	g.nodes[key] = &node{
		key:          key,
		dependencies: dependencies,
	}
}

// Len returns the number of nodes.
func (g *DependencyGraph) Len() int {
	return len(g.order)
}

// TopologicalSort returns nodes in dependency order. Among the nodes whose
// dependencies are all placed, the earliest registered goes next, so a
// dependency is pulled forward only as far as its dependents need.
// Returns error if circular dependency detected.
func (g *DependencyGraph) TopologicalSort() ([]model.Key, error) {
	ready := &readyQueue{index: make(map[model.Key]int, len(g.order))}
	for i, key := range g.order {
		ready.index[key] = i
	}

	pending := make(map[model.Key]int, len(g.order))
	dependents := make(map[model.Key][]model.Key)
	for _, key := range g.order {
		seen := make(map[model.Key]bool)
		for _, dep := range g.nodes[key].dependencies {
			if _, owned := g.nodes[dep]; !owned || seen[dep] {
				// Not owned here: inherited, absent or deferred.
				continue
			}
			seen[dep] = true
			pending[key]++
			dependents[dep] = append(dependents[dep], key)
		}
	}

	for _, key := range g.order {
		if pending[key] == 0 {
			heap.Push(ready, key)
		}
	}

	result := make([]model.Key, 0, len(g.nodes))
	for ready.Len() > 0 {
		key := heap.Pop(ready).(model.Key)
		result = append(result, key)
		for _, d := range dependents[key] {
			pending[d]--
			if pending[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}

	if len(result) < len(g.order) {
		return nil, g.cycle(pending)
	}
	return result, nil
}

// cycle walks the nodes left unplaced to name one of their cycles.
func (g *DependencyGraph) cycle(pending map[model.Key]int) error {
	visited := make(map[model.Key]bool)
	visiting := make(map[model.Key]bool)
	var stack, result []model.Key
	for _, key := range g.order {
		if pending[key] == 0 {
			continue
		}
		if err := g.visit(key, visited, visiting, &stack, &result); err != nil {
			return err
		}
	}
	return errors.ErrCircularDependency(nil)
}

// readyQueue is a min-heap of keys by registration index.
type readyQueue struct {
	keys  []model.Key
	index map[model.Key]int
}

func (q *readyQueue) Len() int           { return len(q.keys) }
func (q *readyQueue) Less(i, j int) bool { return q.index[q.keys[i]] < q.index[q.keys[j]] }
func (q *readyQueue) Swap(i, j int)      { q.keys[i], q.keys[j] = q.keys[j], q.keys[i] }
func (q *readyQueue) Push(x any)         { q.keys = append(q.keys, x.(model.Key)) }

func (q *readyQueue) Pop() any {
	last := q.keys[len(q.keys)-1]
	q.keys = q.keys[:len(q.keys)-1]
	return last
}

// visit performs DFS traversal, stopping at the first cycle.
func (g *DependencyGraph) visit(key model.Key, visited, visiting map[model.Key]bool, stack, result *[]model.Key) error {
	if visited[key] {
		return nil
	}

	if visiting[key] {
		return errors.ErrCircularDependency(cycleFrom(*stack, key))
	}

	n := g.nodes[key]
	if n == nil {
		// Not owned here: inherited, absent or deferred.
		return nil
	}

	visiting[key] = true
	*stack = append(*stack, key)

	for _, dep := range n.dependencies {
		if err := g.visit(dep, visited, visiting, stack, result); err != nil {
			return err
		}
	}

	*stack = (*stack)[:len(*stack)-1]
	visiting[key] = false
	visited[key] = true
	*result = append(*result, key)

	return nil
}

func cycleFrom(stack []model.Key, key model.Key) []string {
	start := 0
	for i, k := range stack {
		if k == key {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(stack)-start+1)
	for _, k := range stack[start:] {
		cycle = append(cycle, k.String())
	}
	return append(cycle, key.String())
}
