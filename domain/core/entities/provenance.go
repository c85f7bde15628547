package entities

import "provenance-backend/domain/core/valueobjects"

// DerivationEdge records that Parent was derived using Child as a source.
type DerivationEdge struct {
	Parent valueobjects.BulletPointID
	Child  valueobjects.BulletPointID
}

// RawRef records that Bullet was derived using RawFact as a source.
type RawRef struct {
	Bullet     valueobjects.BulletPointID
	RawFact    valueobjects.RawFactID
	SourceType string
}
