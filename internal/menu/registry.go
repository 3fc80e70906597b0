package menu

import (
	"strings"

	"github.com/PawelWisn/Fleet-Flow/internal/resource"
)

// Node is one entry of the menu tree. IDs are paths joined with ':', e.g.
// "dashboard:soon" is the "soon" child of "dashboard".
type Node struct {
	ID       string
	Loader   Loader
	Action   Action
	Children map[string]*Node
	// Resource names the collection whose list screen the node opens.
	Resource string
}

// definition describes the behaviour attached to a menu path.
type definition struct {
	id     string
	loader Loader
	action Action
}

// definitions are the entries that are not plain collection screens.
var definitions = []definition{
	{id: "dashboard", loader: loadDashboardMenu, action: DashboardAction},
	{id: "dashboard:soon", loader: loadUpcomingMenu, action: UpcomingAction},
	{id: "upcoming", loader: loadUpcomingMenu, action: UpcomingAction},
	{id: "account", loader: loadAccountMenu},
	{id: "account:sign-out", action: SignOutAction},
}

// Registry indexes the menu tree by node ID.
type Registry struct {
	nodes map[string]*Node
}

// BuildRegistry assembles the tree from the collection catalogue and the
// menu definitions. Missing intermediate nodes are created empty.
func BuildRegistry() *Registry {
	r := &Registry{nodes: map[string]*Node{}}
	root := r.node("root")
	root.Loader = func(ctx Context) ([]Item, error) { return RootItems(ctx.Session), nil }
	for _, d := range resource.All() {
		r.node(d.Name).Resource = d.Name
	}
	for _, def := range definitions {
		n := r.node(def.id)
		n.Loader, n.Action = def.loader, def.action
	}
	return r
}

// node returns the node for id, creating it and linking it under its parent
// when needed.
func (r *Registry) node(id string) *Node {
	if n, ok := r.nodes[id]; ok {
		return n
	}
	n := &Node{ID: id, Children: map[string]*Node{}}
	r.nodes[id] = n
	if id != "root" {
		parent, key := splitID(id)
		r.node(parent).Children[key] = n
	}
	return n
}

func (r *Registry) Root() *Node {
	return r.nodes["root"]
}

func (r *Registry) Find(id string) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Child resolves the entry key below parentID.
func (r *Registry) Child(parentID, key string) (*Node, bool) {
	parent, ok := r.nodes[parentID]
	if !ok {
		return nil, false
	}
	n, ok := parent.Children[key]
	return n, ok
}

// splitID separates the parent path from the last segment of id. Top-level
// IDs hang off the root.
func splitID(id string) (parent, key string) {
	idx := strings.LastIndex(id, ":")
	if idx < 0 {
		return "root", id
	}
	return id[:idx], id[idx+1:]
}
