package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

// StatusTransition is one append-only audit row. Rows are never updated or
// deleted; the ordered set per subject is the subject's status history.
type StatusTransition struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubjectKind       enums.TransitionSubject `gorm:"column:subject_kind;type:text;not null;index:idx_transitions_subject"`
	SubjectID         uuid.UUID               `gorm:"column:subject_id;type:uuid;not null;index:idx_transitions_subject"`
	FromStatus        *string                 `gorm:"column:from_status"`
	ToStatus          string                  `gorm:"column:to_status;not null"`
	ActorID           *uuid.UUID              `gorm:"column:actor_id;type:uuid"`
	Notes             *string                 `gorm:"column:notes"`
	ExternalReference *string                 `gorm:"column:external_reference"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
}
