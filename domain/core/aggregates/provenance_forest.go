package aggregates

import (
	"sort"
	"time"

	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
)

// ForestNode is one bullet point in a provenance tree together with the
// bullet points it was derived from.
type ForestNode struct {
	ID           valueobjects.BulletPointID
	UnitID       valueobjects.UnitID
	EchelonLevel valueobjects.EchelonLevel
	Content      string
	Validity     valueobjects.ValidityStatus
	CreatedAt    time.Time
	Children     []ForestNode
}

// Size counts the nodes in the subtree rooted at n.
func (n ForestNode) Size() int {
	size := 1
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// BuildForest turns a flat bullet set and edge list into nested trees.
//
// Only edges with both endpoints in bullets are kept. Roots are the
// bullets that are not the child of any kept edge, sorted by id; children
// are sorted by id as well. A bullet shared by several parents is
// expanded once under each of them. Reaching a bullet that is already on
// the current expansion path fails with a cyclic provenance error. A
// cycle that no root leads into produces no output.
func BuildForest(bullets []*entities.BulletPoint, edges []entities.DerivationEdge) ([]ForestNode, error) {
	byID := make(map[valueobjects.BulletPointID]*entities.BulletPoint, len(bullets))
	for _, b := range bullets {
		byID[b.ID()] = b
	}

	children := make(map[valueobjects.BulletPointID][]valueobjects.BulletPointID)
	isChild := make(map[valueobjects.BulletPointID]bool)
	seen := make(map[entities.DerivationEdge]bool, len(edges))
	for _, e := range edges {
		if seen[e] {
			continue
		}
		_, parentOK := byID[e.Parent]
		_, childOK := byID[e.Child]
		if !parentOK || !childOK {
			continue
		}
		seen[e] = true
		children[e.Parent] = append(children[e.Parent], e.Child)
		isChild[e.Child] = true
	}
	for id := range children {
		kids := children[id]
		sort.Slice(kids, func(i, j int) bool { return kids[i] < kids[j] })
	}

	roots := make([]valueobjects.BulletPointID, 0, len(byID))
	for id := range byID {
		if !isChild[id] {
			roots = append(roots, id)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	forest := make([]ForestNode, 0, len(roots))
	for _, root := range roots {
		tree, err := expand(root, byID, children)
		if err != nil {
			return nil, err
		}
		forest = append(forest, tree)
	}
	return forest, nil
}

type expansionFrame struct {
	id       valueobjects.BulletPointID
	next     int
	children []ForestNode
}

// expand builds the tree under root with an explicit stack. onPath holds
// the ids of the frames currently on the stack.
func expand(
	root valueobjects.BulletPointID,
	byID map[valueobjects.BulletPointID]*entities.BulletPoint,
	children map[valueobjects.BulletPointID][]valueobjects.BulletPointID,
) (ForestNode, error) {
	stack := []*expansionFrame{{id: root}}
	onPath := map[valueobjects.BulletPointID]bool{root: true}

	for {
		top := stack[len(stack)-1]
		kids := children[top.id]
		if top.next < len(kids) {
			child := kids[top.next]
			top.next++
			if onPath[child] {
				return ForestNode{}, pkgerrors.NewCyclicProvenanceError(int64(child))
			}
			onPath[child] = true
			stack = append(stack, &expansionFrame{id: child})
			continue
		}

		node := newForestNode(byID[top.id], top.children)
		stack = stack[:len(stack)-1]
		delete(onPath, top.id)
		if len(stack) == 0 {
			return node, nil
		}
		parent := stack[len(stack)-1]
		parent.children = append(parent.children, node)
	}
}

func newForestNode(b *entities.BulletPoint, children []ForestNode) ForestNode {
	if children == nil {
		children = []ForestNode{}
	}
	return ForestNode{
		ID:           b.ID(),
		UnitID:       b.UnitID(),
		EchelonLevel: b.EchelonLevel(),
		Content:      b.Content().String(),
		Validity:     b.Validity(),
		CreatedAt:    b.CreatedAt(),
		Children:     children,
	}
}
