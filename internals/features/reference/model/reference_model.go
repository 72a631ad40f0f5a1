package model

// Reference tables. The rows are operator data, seeded once and extended from
// the admin UI; the engine only ever keys on Code, never on ids.

// StatusModel is the processing-status vocabulary of orders and assignments.
type StatusModel struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Code  string `gorm:"type:varchar(30);unique;not null" json:"code"`
	Label string `gorm:"type:varchar(100);not null" json:"label"`
}

func (StatusModel) TableName() string { return "statuses" }

// Terminal status code. The retard filter and closure logic look this up by
// code so operators can relabel without breaking the engine.
const StatusCodeTermine = "termine"

// MediaFormatModel is the recording media vocabulary (cd, mp3, cle_usb, daisy).
type MediaFormatModel struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Code  string `gorm:"type:varchar(30);unique;not null" json:"code"`
	Label string `gorm:"type:varchar(100);not null" json:"label"`
}

func (MediaFormatModel) TableName() string { return "media_formats" }

// BillStateModel is the bill's own lifecycle vocabulary, distinct from the
// billing status carried on orders.
type BillStateModel struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Code  string `gorm:"type:varchar(30);unique;not null" json:"code"`
	Label string `gorm:"type:varchar(100);not null" json:"label"`
}

func (BillStateModel) TableName() string { return "bill_states" }

const (
	BillStateCodeBrouillon = "brouillon"
	BillStateCodeEmise     = "emise"
	BillStateCodePayee     = "payee"
)
