package queries

import (
	"provenance-backend/application/services"
	"provenance-backend/domain/core/aggregates"
	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/pkg/utils"
)

// UnitView is the read model of a unit
type UnitView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	EchelonLevel string `json:"echelon_level"`
	ParentID     *int64 `json:"parent_id"`
	CreatedAt    string `json:"created_at"`
}

// UnitTreeView is a unit with its nested subunits
type UnitTreeView struct {
	UnitView
	Children []UnitTreeView `json:"children"`
}

// RawFactView is the read model of a raw fact
type RawFactView struct {
	ID         int64  `json:"id"`
	UnitID     int64  `json:"unit_id"`
	Content    string `json:"content"`
	SourceType string `json:"source_type"`
	CreatedAt  string `json:"created_at"`
}

// CCIRView is the read model of a CCIR
type CCIRView struct {
	ID          int64    `json:"id"`
	UnitID      int64    `json:"unit_id"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Active      bool     `json:"active"`
	CreatedAt   string   `json:"created_at"`
}

// BulletPointView is the read model of a bullet point
type BulletPointView struct {
	ID             int64  `json:"id"`
	UnitID         int64  `json:"unit_id"`
	EchelonLevel   string `json:"echelon_level"`
	Content        string `json:"content"`
	ValidityStatus string `json:"validity_status"`
	CreatedAt      string `json:"created_at"`
}

// BulletPointDetailsView is a bullet point with its direct provenance
type BulletPointDetailsView struct {
	BulletPointView
	ChildBulletIDs []int64 `json:"child_bullet_ids"`
	RawFactIDs     []int64 `json:"raw_fact_ids"`
	ParentIDs      []int64 `json:"parent_ids"`
}

// HierarchyNodeView is one node of a provenance tree
type HierarchyNodeView struct {
	BulletPointView
	Children []HierarchyNodeView `json:"children"`
}

// RegenerationView summarizes a regeneration run
type RegenerationView struct {
	Message        string   `json:"message"`
	Keywords       []string `json:"keywords,omitempty"`
	CCIRID         *int64   `json:"ccir_id,omitempty"`
	UnitsProcessed int      `json:"units_processed"`
	BulletsCreated int      `json:"bullets_created"`
	DurationMS     int64    `json:"duration_ms"`
}

func NewUnitView(u *entities.Unit) UnitView {
	v := UnitView{
		ID:           int64(u.ID()),
		Name:         u.Name(),
		EchelonLevel: u.EchelonLevel().String(),
		CreatedAt:    utils.FormatTimestamp(u.CreatedAt()),
	}
	if p := u.ParentID(); p != nil {
		id := int64(*p)
		v.ParentID = &id
	}
	return v
}

func NewUnitViews(units []*entities.Unit) []UnitView {
	out := make([]UnitView, 0, len(units))
	for _, u := range units {
		out = append(out, NewUnitView(u))
	}
	return out
}

func NewUnitTreeView(n aggregates.UnitNode) UnitTreeView {
	v := UnitTreeView{UnitView: NewUnitView(n.Unit), Children: make([]UnitTreeView, 0, len(n.Children))}
	for _, c := range n.Children {
		v.Children = append(v.Children, NewUnitTreeView(c))
	}
	return v
}

func NewRawFactView(f *entities.RawFact) RawFactView {
	return RawFactView{
		ID:         int64(f.ID()),
		UnitID:     int64(f.UnitID()),
		Content:    f.Content().String(),
		SourceType: f.SourceType(),
		CreatedAt:  utils.FormatTimestamp(f.CreatedAt()),
	}
}

func NewRawFactViews(facts []*entities.RawFact) []RawFactView {
	out := make([]RawFactView, 0, len(facts))
	for _, f := range facts {
		out = append(out, NewRawFactView(f))
	}
	return out
}

func NewCCIRView(c *entities.CCIR) CCIRView {
	return CCIRView{
		ID:          int64(c.ID()),
		UnitID:      int64(c.UnitID()),
		Description: c.Description(),
		Keywords:    c.Keywords(),
		Active:      c.Active(),
		CreatedAt:   utils.FormatTimestamp(c.CreatedAt()),
	}
}

func NewCCIRViews(ccirs []*entities.CCIR) []CCIRView {
	out := make([]CCIRView, 0, len(ccirs))
	for _, c := range ccirs {
		out = append(out, NewCCIRView(c))
	}
	return out
}

func NewBulletPointView(b *entities.BulletPoint) BulletPointView {
	return BulletPointView{
		ID:             int64(b.ID()),
		UnitID:         int64(b.UnitID()),
		EchelonLevel:   b.EchelonLevel().String(),
		Content:        b.Content().String(),
		ValidityStatus: b.Validity().String(),
		CreatedAt:      utils.FormatTimestamp(b.CreatedAt()),
	}
}

func NewBulletPointViews(bullets []*entities.BulletPoint) []BulletPointView {
	out := make([]BulletPointView, 0, len(bullets))
	for _, b := range bullets {
		out = append(out, NewBulletPointView(b))
	}
	return out
}

func NewBulletPointDetailsView(d *services.BulletPointDetails) BulletPointDetailsView {
	v := BulletPointDetailsView{
		BulletPointView: NewBulletPointView(d.Bullet),
		ChildBulletIDs:  bulletIDs(d.ChildBullets),
		RawFactIDs:      make([]int64, 0, len(d.RawRefs)),
		ParentIDs:       bulletIDs(d.ParentIDs),
	}
	for _, ref := range d.RawRefs {
		v.RawFactIDs = append(v.RawFactIDs, int64(ref.RawFact))
	}
	return v
}

func NewHierarchyView(forest []aggregates.ForestNode) []HierarchyNodeView {
	out := make([]HierarchyNodeView, 0, len(forest))
	for _, n := range forest {
		out = append(out, HierarchyNodeView{
			BulletPointView: BulletPointView{
				ID:             int64(n.ID),
				UnitID:         int64(n.UnitID),
				EchelonLevel:   n.EchelonLevel.String(),
				Content:        n.Content,
				ValidityStatus: n.Validity.String(),
				CreatedAt:      utils.FormatTimestamp(n.CreatedAt),
			},
			Children: NewHierarchyView(n.Children),
		})
	}
	return out
}

func NewRegenerationView(r *services.RegenerationResult) RegenerationView {
	v := RegenerationView{
		Message:        "All summaries regenerated",
		Keywords:       r.Keywords,
		UnitsProcessed: r.UnitsProcessed,
		BulletsCreated: r.BulletsCreated,
		DurationMS:     r.Duration.Milliseconds(),
	}
	if r.CCIRID != nil {
		id := int64(*r.CCIRID)
		v.CCIRID = &id
	}
	return v
}

func bulletIDs(ids []valueobjects.BulletPointID) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}
