package model

import "time"

// OuvrageModel is a title eligible for recording. Read-only from the order
// lifecycle's point of view; maintained by the catalogue screens.
type OuvrageModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"size:255;not null;index" json:"title" validate:"required,min=1,max=255"`
	Author    string    `gorm:"size:255;not null;index" json:"author" validate:"required,min=1,max=255"`
	Publisher *string   `gorm:"size:255" json:"publisher,omitempty"`
	Year      *int      `json:"year,omitempty"`
	Summary   *string   `gorm:"type:text" json:"summary,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OuvrageModel) TableName() string { return "ouvrages" }
