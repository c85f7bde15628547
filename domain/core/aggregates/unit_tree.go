package aggregates

import (
	"sort"

	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
)

// UnitTree indexes a unit set by parent. It is built once per request
// from a snapshot and never mutated afterwards.
type UnitTree struct {
	ids      []valueobjects.UnitID
	units    map[valueobjects.UnitID]*entities.Unit
	children map[valueobjects.UnitID][]valueobjects.UnitID
}

// NewUnitTree builds the parent to children adjacency in a single pass.
// Units whose parent is not part of the set are treated as roots.
func NewUnitTree(units []*entities.Unit) *UnitTree {
	t := &UnitTree{
		ids:      make([]valueobjects.UnitID, 0, len(units)),
		units:    make(map[valueobjects.UnitID]*entities.Unit, len(units)),
		children: make(map[valueobjects.UnitID][]valueobjects.UnitID),
	}
	for _, u := range units {
		if _, dup := t.units[u.ID()]; dup {
			continue
		}
		t.units[u.ID()] = u
		t.ids = append(t.ids, u.ID())
	}
	sort.Slice(t.ids, func(i, j int) bool { return t.ids[i] < t.ids[j] })

	for _, id := range t.ids {
		parent := t.units[id].ParentID()
		if parent == nil {
			continue
		}
		if _, ok := t.units[*parent]; !ok {
			continue
		}
		t.children[*parent] = append(t.children[*parent], id)
	}
	return t
}

func (t *UnitTree) Len() int { return len(t.ids) }

func (t *UnitTree) Contains(id valueobjects.UnitID) bool {
	_, ok := t.units[id]
	return ok
}

func (t *UnitTree) Unit(id valueobjects.UnitID) (*entities.Unit, bool) {
	u, ok := t.units[id]
	return u, ok
}

// IDs returns every unit id in ascending order.
func (t *UnitTree) IDs() []valueobjects.UnitID {
	return append([]valueobjects.UnitID(nil), t.ids...)
}

// Children returns the direct children of id in ascending order.
func (t *UnitTree) Children(id valueobjects.UnitID) []valueobjects.UnitID {
	return append([]valueobjects.UnitID(nil), t.children[id]...)
}

// Roots returns units without a parent inside the set.
func (t *UnitTree) Roots() []valueobjects.UnitID {
	var roots []valueobjects.UnitID
	for _, id := range t.ids {
		parent := t.units[id].ParentID()
		if parent == nil || !t.Contains(*parent) {
			roots = append(roots, id)
		}
	}
	return roots
}

// Descendants returns id itself followed by every unit reachable through
// the children adjacency. The traversal is depth first with an explicit
// stack: a unit is emitted when popped, then its children are pushed.
// Callers must not rely on level order.
func (t *UnitTree) Descendants(id valueobjects.UnitID) ([]valueobjects.UnitID, error) {
	if !t.Contains(id) {
		return nil, pkgerrors.NewNotFoundError("unit", int64(id))
	}

	var out []valueobjects.UnitID
	visited := make(map[valueobjects.UnitID]bool)
	stack := []valueobjects.UnitID{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		out = append(out, current)
		stack = append(stack, t.children[current]...)
	}
	return out, nil
}

// Subtree returns the units in the descendant closure of id.
func (t *UnitTree) Subtree(id valueobjects.UnitID) ([]*entities.Unit, error) {
	ids, err := t.Descendants(id)
	if err != nil {
		return nil, err
	}
	units := make([]*entities.Unit, len(ids))
	for i, uid := range ids {
		units[i] = t.units[uid]
	}
	return units, nil
}

// BottomUpOrder orders units so that every unit follows all of its
// children. It repeatedly scans the whole set and takes any unit whose
// children are all done, including ones finished earlier in the same
// scan. A scan without progress means the parent relation has a cycle.
func (t *UnitTree) BottomUpOrder() ([]valueobjects.UnitID, error) {
	processed := make(map[valueobjects.UnitID]bool, len(t.ids))
	order := make([]valueobjects.UnitID, 0, len(t.ids))

	for len(order) < len(t.ids) {
		progress := false
		for _, id := range t.ids {
			if processed[id] || !t.childrenProcessed(id, processed) {
				continue
			}
			processed[id] = true
			order = append(order, id)
			progress = true
		}
		if !progress {
			var remaining []int64
			for _, id := range t.ids {
				if !processed[id] {
					remaining = append(remaining, int64(id))
				}
			}
			return nil, pkgerrors.NewHierarchyCycleError(remaining)
		}
	}
	return order, nil
}

func (t *UnitTree) childrenProcessed(id valueobjects.UnitID, processed map[valueobjects.UnitID]bool) bool {
	for _, child := range t.children[id] {
		if !processed[child] {
			return false
		}
	}
	return true
}

// UnitNode is a unit with its nested children, used for subtree views.
type UnitNode struct {
	Unit     *entities.Unit
	Children []UnitNode
}

// Nested returns the subtree rooted at id as nested nodes with children in
// ascending id order.
func (t *UnitTree) Nested(id valueobjects.UnitID) (UnitNode, error) {
	if !t.Contains(id) {
		return UnitNode{}, pkgerrors.NewNotFoundError("unit", int64(id))
	}
	return t.nested(id, make(map[valueobjects.UnitID]bool)), nil
}

func (t *UnitTree) nested(id valueobjects.UnitID, visited map[valueobjects.UnitID]bool) UnitNode {
	visited[id] = true
	node := UnitNode{Unit: t.units[id], Children: []UnitNode{}}
	for _, child := range t.children[id] {
		if visited[child] {
			continue
		}
		node.Children = append(node.Children, t.nested(child, visited))
	}
	return node
}
