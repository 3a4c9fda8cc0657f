package catalog

import (
	"slices"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/model"
)

// Tree indexes a flat category list by id and parent.
type Tree struct {
	byID     map[uuid.UUID]model.Category
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

func NewTree(categories []model.Category) *Tree {
	sorted := slices.Clone(categories)
	slices.SortStableFunc(sorted, func(a, b model.Category) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return compareString(a.Name, b.Name)
	})

	t := &Tree{
		byID:     make(map[uuid.UUID]model.Category, len(sorted)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, c := range sorted {
		t.byID[c.ID] = c
	}
	for _, c := range sorted {
		if c.ParentID == nil {
			t.roots = append(t.roots, c.ID)
			continue
		}
		if _, ok := t.byID[*c.ParentID]; !ok {
			t.roots = append(t.roots, c.ID)
			continue
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], c.ID)
	}
	return t
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (t *Tree) Get(id uuid.UUID) (model.Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Children returns the direct children of id in position order.
func (t *Tree) Children(id uuid.UUID) []model.Category {
	ids := t.children[id]
	out := make([]model.Category, 0, len(ids))
	for _, childID := range ids {
		out = append(out, t.byID[childID])
	}
	return out
}

// AllChildren returns every descendant of id, depth first.
func (t *Tree) AllChildren(id uuid.UUID) []model.Category {
	var out []model.Category
	visited := map[uuid.UUID]struct{}{id: {}}

	var walk func(uuid.UUID)
	walk = func(parent uuid.UUID) {
		for _, childID := range t.children[parent] {
			if _, seen := visited[childID]; seen {
				continue
			}
			visited[childID] = struct{}{}
			out = append(out, t.byID[childID])
			walk(childID)
		}
	}
	walk(id)

	return out
}

// Parents returns the ancestors of id, nearest first.
func (t *Tree) Parents(id uuid.UUID) []model.Category {
	var out []model.Category
	visited := map[uuid.UUID]struct{}{id: {}}

	c, ok := t.byID[id]
	for ok && c.ParentID != nil {
		if _, seen := visited[*c.ParentID]; seen {
			break
		}
		visited[*c.ParentID] = struct{}{}

		c, ok = t.byID[*c.ParentID]
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// Scope returns id followed by the ids of all its descendants.
func (t *Tree) Scope(id uuid.UUID) []uuid.UUID {
	children := t.AllChildren(id)
	ids := make([]uuid.UUID, 0, len(children)+1)
	ids = append(ids, id)
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	return ids
}

// Currents returns id and its ancestors, the categories highlighted as
// current in navigation.
func (t *Tree) Currents(id uuid.UUID) []uuid.UUID {
	if _, ok := t.byID[id]; !ok {
		return nil
	}
	parents := t.Parents(id)
	ids := make([]uuid.UUID, 0, len(parents)+1)
	ids = append(ids, id)
	for _, p := range parents {
		ids = append(ids, p.ID)
	}
	return ids
}

// Node is a category as rendered in navigation. Level counts from the
// first rendered level, not from the stored category level.
type Node struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Level    int       `json:"level"`
	Current  bool      `json:"current"`
	Children []Node    `json:"children"`
}

// Navigation builds the navigation tree starting at stored level
// startLevel. Nodes are expanded when they are current or their stored
// level is at most expandLevel.
func (t *Tree) Navigation(currents []uuid.UUID, startLevel, expandLevel int) []Node {
	isCurrent := make(map[uuid.UUID]bool, len(currents))
	for _, id := range currents {
		isCurrent[id] = true
	}

	var roots []model.Category
	for _, c := range t.byID {
		if c.Level != startLevel || c.ExcludeFromNavigation {
			continue
		}
		if startLevel > 1 && (c.ParentID == nil || !isCurrent[*c.ParentID]) {
			continue
		}
		roots = append(roots, c)
	}
	slices.SortStableFunc(roots, func(a, b model.Category) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return compareString(a.Name, b.Name)
	})

	visited := make(map[uuid.UUID]struct{})
	var build func(c model.Category, level int) Node
	build = func(c model.Category, level int) Node {
		visited[c.ID] = struct{}{}
		node := Node{
			ID:       c.ID,
			Name:     c.Name,
			Slug:     c.Slug,
			Level:    level,
			Current:  isCurrent[c.ID],
			Children: []Node{},
		}
		if !node.Current && c.Level > expandLevel {
			return node
		}
		for _, child := range t.Children(c.ID) {
			if child.ExcludeFromNavigation {
				continue
			}
			if _, seen := visited[child.ID]; seen {
				continue
			}
			node.Children = append(node.Children, build(child, level+1))
		}
		return node
	}

	nodes := make([]Node, 0, len(roots))
	for _, root := range roots {
		nodes = append(nodes, build(root, 0))
	}
	return nodes
}
