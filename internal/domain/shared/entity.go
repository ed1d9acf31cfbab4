package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is what every persisted domain object exposes: identity plus
// audit timestamps. Aggregate roots build on this in aggregate.go.
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries the identity and timestamps shared by every row.
// IDs are generated client-side so a document and its lines can be
// linked before anything touches the database.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (e *BaseEntity) GetID() uuid.UUID        { return e.ID }
func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }
func (e *BaseEntity) GetUpdatedAt() time.Time { return e.UpdatedAt }

// Touch refreshes the update timestamp after a mutation.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}
