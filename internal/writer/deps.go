package writer

import (
	"fmt"
	"io"
	"sort"
)

// DependencyGraph records which generated functions call which
type DependencyGraph struct {
	graph map[string]map[string]bool
	nodes map[string]bool
	roots map[string]bool
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		graph: make(map[string]map[string]bool),
		nodes: make(map[string]bool),
		roots: make(map[string]bool),
	}
}

// AddFunction adds a node without edges
func (dg *DependencyGraph) AddFunction(name string) {
	dg.nodes[name] = true
}

func (dg *DependencyGraph) AddCall(caller, callee string) {
	if dg.graph[caller] == nil {
		dg.graph[caller] = make(map[string]bool)
	}
	dg.graph[caller][callee] = true
	dg.nodes[caller] = true
	dg.nodes[callee] = true
}

func (dg *DependencyGraph) MarkRoot(name string) {
	dg.roots[name] = true
	dg.nodes[name] = true
}

// Reachable returns every function reachable from a root
func (dg *DependencyGraph) Reachable() map[string]bool {
	reachable := make(map[string]bool)

	var dfs func(string)
	dfs = func(name string) {
		if reachable[name] {
			return
		}
		reachable[name] = true
		for callee := range dg.graph[name] {
			dfs(callee)
		}
	}

	for root := range dg.roots {
		dfs(root)
	}
	return reachable
}

// Unreachable returns the sorted names of declared functions nothing uses
func (dg *DependencyGraph) Unreachable() []string {
	reachable := dg.Reachable()
	var dead []string
	for name := range dg.nodes {
		if !reachable[name] {
			dead = append(dead, name)
		}
	}
	sort.Strings(dead)
	return dead
}

// Print writes the dependency tree, as shown by "tactc build --deps"
func (dg *DependencyGraph) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Dependency Tree ===")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Entry Points:")
	for _, root := range sortedKeys(dg.roots) {
		fmt.Fprintf(w, "  - %s\n", root)
	}
	fmt.Fprintln(w)

	reachable := dg.Reachable()
	fmt.Fprintf(w, "Reachable Functions: %d\n", len(reachable))
	for _, fn := range sortedKeys(reachable) {
		if callees := dg.graph[fn]; len(callees) > 0 {
			fmt.Fprintf(w, "  %s -> %v\n", fn, sortedKeys(callees))
		} else {
			fmt.Fprintf(w, "  %s (leaf)\n", fn)
		}
	}
	fmt.Fprintln(w)

	if dead := dg.Unreachable(); len(dead) > 0 {
		fmt.Fprintf(w, "Not Emitted: %d functions\n", len(dead))
		for _, fn := range dead {
			fmt.Fprintf(w, "  - %s\n", fn)
		}
		fmt.Fprintln(w)
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
