// Package navtree groups a document's endpoints into the tag tree shown in
// the endpoint list.
package navtree

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"

	"apidesk/internal/model"
	"apidesk/internal/storage"
)

const stateKey = "apidesk_group_states"

// Group is one tag with the endpoints carrying it.
type Group struct {
	Tag       string
	Endpoints []model.Endpoint
}

type searchSource []model.Endpoint

func (s searchSource) String(i int) string {
	ep := s[i]
	summary := ""
	if ep.Operation != nil {
		summary = ep.Operation.Summary
	}
	return strings.ToLower(ep.Path + " " + summary + " " + ep.Method)
}

func (s searchSource) Len() int { return len(s) }

// Filter keeps the endpoints whose "path summary method" text fuzzy-matches
// query, in document order. A blank query keeps everything.
func Filter(endpoints []model.Endpoint, query string) []model.Endpoint {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return endpoints
	}
	matches := fuzzy.FindFromNoSort(query, searchSource(endpoints))
	out := make([]model.Endpoint, 0, len(matches))
	for _, m := range matches {
		out = append(out, endpoints[m.Index])
	}
	return out
}

// GroupByTag groups the (filtered) endpoints by tag in order of first
// appearance. An endpoint with several tags appears in each group.
func GroupByTag(doc *model.Document, query string) []Group {
	if doc == nil {
		return nil
	}
	var groups []Group
	index := map[string]int{}
	for _, ep := range Filter(doc.Endpoints, query) {
		tags := []string{model.DefaultTag}
		if ep.Operation != nil && len(ep.Operation.Tags) > 0 {
			tags = ep.Operation.Tags
		}
		for _, tag := range tags {
			i, ok := index[tag]
			if !ok {
				i = len(groups)
				index[tag] = i
				groups = append(groups, Group{Tag: tag})
			}
			groups[i].Endpoints = append(groups[i].Endpoints, ep)
		}
	}
	return groups
}

// Node is one segment of a dash-delimited tag name.
type Node struct {
	// Name is the tag prefix up to this node, e.g. "Admin-User".
	Name string
	// Label is the last segment, e.g. "User".
	Label       string
	Description string
	// Endpoints is non-empty only for nodes that are exact tag names.
	Endpoints []model.Endpoint
	Children  []*Node

	childIndex map[string]*Node
}

func newNode(name, label string) *Node {
	return &Node{Name: name, Label: label, childIndex: map[string]*Node{}}
}

func (n *Node) child(label string) *Node {
	if c, ok := n.childIndex[label]; ok {
		return c
	}
	name := label
	if n.Name != "" {
		name = n.Name + "-" + label
	}
	c := newNode(name, label)
	n.childIndex[label] = c
	n.Children = append(n.Children, c)
	return c
}

// Count is the number of endpoints in this node and all of its children.
func (n *Node) Count() int {
	total := len(n.Endpoints)
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

type Tree struct {
	root *Node
}

// Build nests groups by splitting tag names on "-". Descriptions come from
// the document's tag metadata.
func Build(groups []Group, tags []model.Tag) *Tree {
	root := newNode("", "")
	for _, g := range groups {
		cur := root
		for _, part := range strings.Split(g.Tag, "-") {
			cur = cur.child(part)
		}
		cur.Endpoints = g.Endpoints
		for _, t := range tags {
			if t.Name == g.Tag && t.Description != "" {
				cur.Description = t.Description
				break
			}
		}
	}
	return &Tree{root: root}
}

// Roots returns the top-level nodes in first-appearance order.
func (t *Tree) Roots() []*Node {
	return t.root.Children
}

// Find returns the node with the given full name.
func (t *Tree) Find(name string) *Node {
	cur := t.root
	for _, part := range strings.Split(name, "-") {
		c, ok := cur.childIndex[part]
		if !ok {
			return nil
		}
		cur = c
	}
	return cur
}

func (t *Tree) Count() int {
	return t.root.Count()
}

// Line is one visible row: a group header when Endpoint is nil.
type Line struct {
	Depth    int
	Node     *Node
	Endpoint *model.Endpoint
}

func (l Line) IsGroup() bool { return l.Endpoint == nil }

// Lines flattens the tree into rows. Collapsed groups hide their contents;
// a group's own endpoints come before its children.
func (t *Tree) Lines(expanded func(name string) bool) []Line {
	var out []Line
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if len(n.Children) == 0 && len(n.Endpoints) == 0 {
				continue
			}
			out = append(out, Line{Depth: depth, Node: n})
			if expanded != nil && !expanded(n.Name) {
				continue
			}
			for i := range n.Endpoints {
				out = append(out, Line{Depth: depth + 1, Node: n, Endpoint: &n.Endpoints[i]})
			}
			walk(n.Children, depth+1)
		}
	}
	walk(t.root.Children, 0)
	return out
}

// ExpandState remembers collapsed groups for the session. Groups are
// expanded unless explicitly collapsed.
type ExpandState struct {
	kv  storage.Store
	log zerolog.Logger
}

func NewExpandState(kv storage.Store, log zerolog.Logger) *ExpandState {
	return &ExpandState{kv: kv, log: log}
}

func (s *ExpandState) states() map[string]bool {
	m := map[string]bool{}
	if !storage.GetJSON(s.kv, s.log, stateKey, &m) || m == nil {
		return map[string]bool{}
	}
	return m
}

func (s *ExpandState) Expanded(name string) bool {
	v, ok := s.states()[name]
	return !ok || v
}

func (s *ExpandState) Set(name string, expanded bool) {
	m := s.states()
	m[name] = expanded
	_ = storage.PutJSON(s.kv, s.log, stateKey, m)
}

// Toggle flips a group and returns its new state.
func (s *ExpandState) Toggle(name string) bool {
	next := !s.Expanded(name)
	s.Set(name, next)
	return next
}
