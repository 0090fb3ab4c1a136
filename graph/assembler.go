// Package graph assembles mapped entities into one graph and hands the
// assembled nodes to sinks: NATS JetStream and Neo4j.
package graph

import (
	"fmt"
	"slices"
	"sync"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/c360studio/semstreams/message"
)

// Node is the merged view of every assertion made about one identity.
type Node struct {
	ID    string
	Kinds []entity.Kind

	predicates []string
	values     map[string][]any
	keys       map[string]map[string]bool
}

func newNode(id string) *Node {
	return &Node{
		ID:     id,
		values: make(map[string][]any),
		keys:   make(map[string]map[string]bool),
	}
}

func (n *Node) EntityID() string { return n.ID }

// Kind returns the first kind the node was asserted with.
func (n *Node) Kind() entity.Kind {
	if len(n.Kinds) == 0 {
		return ""
	}
	return n.Kinds[0]
}

// Predicates returns the predicates that hold values, in first-asserted order.
func (n *Node) Predicates() []string {
	out := make([]string, 0, len(n.predicates))
	for _, p := range n.predicates {
		if len(n.values[p]) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Values returns the values of predicate.
func (n *Node) Values(predicate string) []any {
	return slices.Clone(n.values[predicate])
}

// Triples returns the merged triples of the node.
func (n *Node) Triples() []message.Triple {
	var out []message.Triple
	for _, p := range n.predicates {
		for _, v := range n.values[p] {
			out = append(out, message.Triple{
				Subject:    n.ID,
				Predicate:  p,
				Object:     v,
				Source:     entity.TripleSource,
				Confidence: 1.0,
			})
		}
	}
	return out
}

func (n *Node) addKind(k entity.Kind) {
	if k != "" && !slices.Contains(n.Kinds, k) {
		n.Kinds = append(n.Kinds, k)
	}
}

// assert merges one value. Single-valued predicates keep the last value;
// all others keep the union.
func (n *Node) assert(predicate string, value any) {
	if _, ok := n.values[predicate]; !ok {
		n.predicates = append(n.predicates, predicate)
		n.keys[predicate] = make(map[string]bool)
	}
	key := valueKey(value)
	if art.IsSingleValued(predicate) {
		n.values[predicate] = []any{value}
		n.keys[predicate] = map[string]bool{key: true}
		return
	}
	if n.keys[predicate][key] {
		return
	}
	n.keys[predicate][key] = true
	n.values[predicate] = append(n.values[predicate], value)
}

// replace clears every group that triples touch.
func (n *Node) replace(groups [][]string, triples []message.Triple) {
	for _, group := range groups {
		touched := slices.ContainsFunc(triples, func(t message.Triple) bool {
			return slices.Contains(group, t.Predicate)
		})
		if !touched {
			continue
		}
		for _, p := range group {
			if _, ok := n.values[p]; ok {
				n.values[p] = nil
				n.keys[p] = make(map[string]bool)
			}
		}
	}
}

func valueKey(v any) string {
	return fmt.Sprintf("%T|%v", v, v)
}

// Assembler merges entities by identity. There is at most one node per
// identity, and nodes are never removed. It is safe for concurrent use.
type Assembler struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

// NewAssembler creates an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{nodes: make(map[string]*Node)}
}

// Add merges entities into the graph. Predicate groups of
// art.ReplaceGroups are replaced as a whole by the latest entity that
// asserts them.
func (a *Assembler) Add(entities ...entity.Entity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range entities {
		id := e.EntityID()
		if id == "" {
			continue
		}
		node, ok := a.nodes[id]
		if !ok {
			node = newNode(id)
			a.nodes[id] = node
		}
		node.addKind(e.Kind())
		triples := e.Triples()
		node.replace(art.ReplaceGroups[e.Kind()], triples)
		for _, t := range triples {
			node.assert(t.Predicate, t.Object)
		}
	}
}

// Node returns the node with id. The node must not be modified.
func (a *Assembler) Node(id string) (*Node, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, ok := a.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by identity.
func (a *Assembler) Nodes() []*Node {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Node, 0, len(a.nodes))
	for _, n := range a.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(x, y *Node) int {
		switch {
		case x.ID < y.ID:
			return -1
		case x.ID > y.ID:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of nodes.
func (a *Assembler) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

// Triples returns the triples of all nodes, ordered by node identity.
func (a *Assembler) Triples() []message.Triple {
	var out []message.Triple
	for _, n := range a.Nodes() {
		out = append(out, n.Triples()...)
	}
	return out
}
