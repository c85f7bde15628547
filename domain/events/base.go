package events

import (
	"time"

	"github.com/google/uuid"

	"provenance-backend/domain/core/valueobjects"
)

// DomainEvent is something that already happened inside the provenance
// store. Events are published after the owning transaction commits.
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent carries the envelope fields shared by every event.
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypeUnitCreated          = "unit.created"
	TypeRawFactCreated       = "raw_fact.created"
	TypeCCIRCreated          = "ccir.created"
	TypeBulletPointCreated   = "bullet_point.created"
	TypeBulletPointsLinked   = "bullet_points.linked"
	TypeBulletPointInvalid   = "bullet_point.invalidated"
	TypeSummariesRegenerated = "summaries.regenerated"
)

func newBase(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp.UTC(),
		Version:     1,
	}
}

// UnitCreated is raised when a unit joins the hierarchy.
type UnitCreated struct {
	BaseEvent
	UnitID       valueobjects.UnitID       `json:"unit_id"`
	Name         string                    `json:"name"`
	EchelonLevel valueobjects.EchelonLevel `json:"echelon_level"`
	ParentID     *valueobjects.UnitID      `json:"parent_id,omitempty"`
}

func NewUnitCreated(id valueobjects.UnitID, name string, echelon valueobjects.EchelonLevel, parentID *valueobjects.UnitID, timestamp time.Time) UnitCreated {
	return UnitCreated{
		BaseEvent:    newBase(id.String(), TypeUnitCreated, timestamp),
		UnitID:       id,
		Name:         name,
		EchelonLevel: echelon,
		ParentID:     parentID,
	}
}

// RawFactCreated is raised when a unit reports a new observation.
type RawFactCreated struct {
	BaseEvent
	RawFactID  valueobjects.RawFactID `json:"raw_fact_id"`
	UnitID     valueobjects.UnitID    `json:"unit_id"`
	SourceType string                 `json:"source_type"`
}

func NewRawFactCreated(id valueobjects.RawFactID, unitID valueobjects.UnitID, sourceType string, timestamp time.Time) RawFactCreated {
	return RawFactCreated{
		BaseEvent:  newBase(id.String(), TypeRawFactCreated, timestamp),
		RawFactID:  id,
		UnitID:     unitID,
		SourceType: sourceType,
	}
}

type CCIRCreated struct {
	BaseEvent
	CCIRID   valueobjects.CCIRID `json:"ccir_id"`
	UnitID   valueobjects.UnitID `json:"unit_id"`
	Keywords []string            `json:"keywords"`
	Active   bool                `json:"active"`
}

func NewCCIRCreated(id valueobjects.CCIRID, unitID valueobjects.UnitID, keywords []string, active bool, timestamp time.Time) CCIRCreated {
	return CCIRCreated{
		BaseEvent: newBase(id.String(), TypeCCIRCreated, timestamp),
		CCIRID:    id,
		UnitID:    unitID,
		Keywords:  keywords,
		Active:    active,
	}
}

// BulletPointCreated is raised for manually authored bullet points only.
// Regeneration reports a single SummariesRegenerated instead.
type BulletPointCreated struct {
	BaseEvent
	BulletPointID valueobjects.BulletPointID   `json:"bullet_point_id"`
	UnitID        valueobjects.UnitID          `json:"unit_id"`
	ChildBullets  []valueobjects.BulletPointID `json:"child_bullet_ids,omitempty"`
	RawFacts      []valueobjects.RawFactID     `json:"raw_fact_ids,omitempty"`
}

func NewBulletPointCreated(id valueobjects.BulletPointID, unitID valueobjects.UnitID, children []valueobjects.BulletPointID, raws []valueobjects.RawFactID, timestamp time.Time) BulletPointCreated {
	return BulletPointCreated{
		BaseEvent:     newBase(id.String(), TypeBulletPointCreated, timestamp),
		BulletPointID: id,
		UnitID:        unitID,
		ChildBullets:  children,
		RawFacts:      raws,
	}
}

type BulletPointsLinked struct {
	BaseEvent
	ParentID valueobjects.BulletPointID `json:"parent_id"`
	ChildID  valueobjects.BulletPointID `json:"child_id"`
}

func NewBulletPointsLinked(parent, child valueobjects.BulletPointID, timestamp time.Time) BulletPointsLinked {
	return BulletPointsLinked{
		BaseEvent: newBase(parent.String(), TypeBulletPointsLinked, timestamp),
		ParentID:  parent,
		ChildID:   child,
	}
}

// BulletPointInvalidated lists every bullet point touched by one invalidation,
// starting with the one the caller named.
type BulletPointInvalidated struct {
	BaseEvent
	BulletPointID valueobjects.BulletPointID   `json:"bullet_point_id"`
	Invalidated   []valueobjects.BulletPointID `json:"invalidated_ids"`
}

func NewBulletPointInvalidated(id valueobjects.BulletPointID, invalidated []valueobjects.BulletPointID, timestamp time.Time) BulletPointInvalidated {
	return BulletPointInvalidated{
		BaseEvent:     newBase(id.String(), TypeBulletPointInvalid, timestamp),
		BulletPointID: id,
		Invalidated:   invalidated,
	}
}

// SummariesRegenerated is raised after the bullet point layer was rebuilt.
type SummariesRegenerated struct {
	BaseEvent
	Keywords       []string             `json:"keywords,omitempty"`
	CCIRID         *valueobjects.CCIRID `json:"ccir_id,omitempty"`
	UnitsProcessed int                  `json:"units_processed"`
	BulletsCreated int                  `json:"bullets_created"`
	Duration       time.Duration        `json:"duration_ns"`
}

func NewSummariesRegenerated(keywords []string, ccirID *valueobjects.CCIRID, units, bullets int, duration time.Duration, timestamp time.Time) SummariesRegenerated {
	return SummariesRegenerated{
		BaseEvent:      newBase("bullet_points", TypeSummariesRegenerated, timestamp),
		Keywords:       keywords,
		CCIRID:         ccirID,
		UnitsProcessed: units,
		BulletsCreated: bullets,
		Duration:       duration,
	}
}
