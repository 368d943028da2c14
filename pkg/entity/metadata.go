// Package entity provides the identity record, field schemas, ordered
// collections and canonical export shared by every network entity.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Metadata types
const (
	TypeEntity     = "entity"
	TypeCollection = "collection"
)

var now = func() time.Time { return time.Now().UTC() }

// Metadata identifies an entity or collection. The id and creation time are
// fixed at construction; updated_at and collection_count change only
// through Touch and Collected.
type Metadata struct {
	Name           string
	Type           string
	Implementation string
	Parent         string

	id              uuid.UUID
	createdAt       time.Time
	updatedAt       *time.Time
	collectionCount int
}

// NewMetadata creates metadata with a fresh id and creation timestamp
func NewMetadata(name, typ string) *Metadata {
	return &Metadata{
		Name:      name,
		Type:      typ,
		id:        uuid.New(),
		createdAt: now(),
	}
}

// ID returns the identifier assigned at construction
func (m *Metadata) ID() uuid.UUID { return m.id }

// CreatedAt returns the construction timestamp
func (m *Metadata) CreatedAt() time.Time { return m.createdAt }

// UpdatedAt returns the last refresh time, nil if never refreshed
func (m *Metadata) UpdatedAt() *time.Time { return m.updatedAt }

// CollectionCount returns the number of successful collections
func (m *Metadata) CollectionCount() int { return m.collectionCount }

// Touch records a data update
func (m *Metadata) Touch() {
	t := now()
	m.updatedAt = &t
}

// Collected records a successful retrieval
func (m *Metadata) Collected() {
	m.Touch()
	m.collectionCount++
}

// Map returns the canonical form of the metadata
func (m *Metadata) Map() map[string]interface{} {
	out := map[string]interface{}{
		"name":             m.Name,
		"type":             m.Type,
		"implementation":   nilIfEmpty(m.Implementation),
		"id":               m.id.String(),
		"created_at":       m.createdAt.Format(time.RFC3339Nano),
		"updated_at":       nil,
		"collection_count": m.collectionCount,
		"parent":           nilIfEmpty(m.Parent),
	}
	if m.updatedAt != nil {
		out["updated_at"] = m.updatedAt.Format(time.RFC3339Nano)
	}
	return out
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
