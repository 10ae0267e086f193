package validator

import (
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/xraph/kiln/internal/diag"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/resolver"
)

// cycles returns the cycles recorded during resolution plus any eager cycle the
// resolution path did not observe. A depth-first walk can close a cycle over a
// deferred edge while an all-eager cycle through the same keys is only crossed
// through the memo, so the eager subgraph is checked for strongly connected
// components as well.
func (v *Validator) cycles(g *resolver.BindingGraph) diag.List {
	recorded := g.Problems.WithCode(diag.CodeUnbreakableCycle)
	problems := append(diag.List(nil), recorded...)

	eager := eagerGraph(g)
	for _, scc := range eager.components() {
		if len(scc) == 1 && !eager.hasEdge(scc[0], scc[0]) {
			continue
		}
		if covered(recorded, scc) {
			continue
		}
		chain := eager.cycleThrough(scc)
		if g.HasCycle(chain) {
			continue
		}
		problems = append(problems, diag.UnbreakableCycle(g.Component, chain))
	}
	return problems
}

// covered reports whether a recorded cycle already lies within scc.
func covered(recorded diag.List, scc []model.Key) bool {
	members := make(map[model.Key]bool, len(scc))
	for _, k := range scc {
		members[k] = true
	}
	for _, p := range recorded {
		inside := true
		for _, k := range p.Keys {
			if !members[k] {
				inside = false
				break
			}
		}
		if inside {
			return true
		}
	}
	return false
}

// keyGraph is the eager subgraph of one binding graph. order fixes the
// resolution order of its keys so results do not depend on map iteration.
type keyGraph struct {
	graph graph.Graph[model.Key, model.Key]
	nodes []model.Key
	order map[model.Key]int
}

func keyHash(k model.Key) model.Key { return k }

// eagerGraph builds the non-deferred edges between keys owned by g.
func eagerGraph(g *resolver.BindingGraph) *keyGraph {
	kg := newKeyGraph()
	for _, rb := range g.Bindings() {
		kg.add(rb.Key)
	}
	for _, e := range g.Edges {
		if e.From.IsZero() || e.Owner != g.Component || e.Kind.Deferred() {
			continue
		}
		kg.connect(e.From, e.To)
	}
	return kg
}

func newKeyGraph() *keyGraph {
	return &keyGraph{
		graph: graph.New(keyHash, graph.Directed()),
		order: make(map[model.Key]int),
	}
}

func (kg *keyGraph) connect(from, to model.Key) {
	kg.add(from)
	kg.add(to)
	// Parallel edges collapse; ErrEdgeAlreadyExists is expected.
	_ = kg.graph.AddEdge(from, to)
}

func (kg *keyGraph) add(k model.Key) {
	if _, ok := kg.order[k]; ok {
		return
	}
	kg.order[k] = len(kg.nodes)
	kg.nodes = append(kg.nodes, k)
	_ = kg.graph.AddVertex(k)
}

func (kg *keyGraph) hasEdge(from, to model.Key) bool {
	_, err := kg.graph.Edge(from, to)
	return err == nil
}

// successors returns the targets of from's edges in resolution order.
func (kg *keyGraph) successors(adjacency map[model.Key]map[model.Key]graph.Edge[model.Key], from model.Key) []model.Key {
	out := make([]model.Key, 0, len(adjacency[from]))
	for to := range adjacency[from] {
		out = append(out, to)
	}
	kg.sort(out)
	return out
}

func (kg *keyGraph) sort(keys []model.Key) {
	sort.Slice(keys, func(i, j int) bool { return kg.order[keys[i]] < kg.order[keys[j]] })
}

// components returns the strongly connected components, each sorted by
// resolution order and listed by their earliest key.
func (kg *keyGraph) components() [][]model.Key {
	sccs, err := graph.StronglyConnectedComponents(kg.graph)
	if err != nil {
		return nil
	}
	for _, scc := range sccs {
		kg.sort(scc)
	}
	sort.Slice(sccs, func(i, j int) bool { return kg.order[sccs[i][0]] < kg.order[sccs[j][0]] })
	return sccs
}

// cycleThrough returns a closed chain inside scc starting at its earliest
// resolved key. scc must be sorted.
func (kg *keyGraph) cycleThrough(scc []model.Key) []model.Key {
	members := make(map[model.Key]bool, len(scc))
	for _, k := range scc {
		members[k] = true
	}
	start := scc[0]
	adjacency, err := kg.graph.AdjacencyMap()
	if err != nil {
		return []model.Key{start, start}
	}

	// Breadth-first search for the shortest way back to start.
	prev := map[model.Key]model.Key{}
	visited := map[model.Key]bool{}
	queue := []model.Key{start}
	var last model.Key
	found := false
	for len(queue) > 0 && !found {
		n := queue[0]
		queue = queue[1:]
		for _, m := range kg.successors(adjacency, n) {
			if !members[m] {
				continue
			}
			if m == start {
				last = n
				found = true
				break
			}
			if !visited[m] {
				visited[m] = true
				prev[m] = n
				queue = append(queue, m)
			}
		}
	}

	chain := []model.Key{start}
	var back []model.Key
	for n := last; n != start; n = prev[n] {
		back = append(back, n)
	}
	for i := len(back) - 1; i >= 0; i-- {
		chain = append(chain, back[i])
	}
	return append(chain, start)
}
