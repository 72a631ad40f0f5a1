package model

import (
	"time"

	usermodel "eca_backend/internals/features/users/model"
)

// AssignmentReaderModel is the append-only reader ledger. A row is written on
// every (re)assignment and never mutated; the current reader is the newest row
// for the assignment. Rows are only removed when their assignment is deleted.
type AssignmentReaderModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AssignmentID uint      `gorm:"not null;index:idx_assignment_readers_current,priority:1" json:"assignment_id"`
	LecteurID    uint      `gorm:"not null;index" json:"lecteur_id"`
	AssignedAt   time.Time `gorm:"not null;index:idx_assignment_readers_current,priority:2" json:"assigned_at"`

	Lecteur *usermodel.UserModel `gorm:"foreignKey:LecteurID" json:"lecteur,omitempty"`
}

func (AssignmentReaderModel) TableName() string { return "assignment_readers" }
