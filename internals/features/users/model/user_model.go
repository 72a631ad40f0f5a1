package model

import (
	"time"

	"eca_backend/internals/constants"
)

// UserModel covers every actor: patrons (aveugles), readers (lecteurs),
// volunteers and admins. One table, discriminated by Role.
type UserModel struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName string  `gorm:"size:100;not null" json:"full_name" validate:"required,min=2,max=100"`
	Email    string  `gorm:"size:255;unique;not null" json:"email" validate:"required,email"`
	Phone    *string `gorm:"size:30" json:"phone,omitempty"`
	Role     string  `gorm:"type:varchar(20);not null;index" json:"role" validate:"required"`
	// Credentials are issued by the external auth service; the hash lives here
	// so that service has a single registry to check against.
	Password  string    `gorm:"size:255" json:"-"`
	Address   *string   `gorm:"type:text" json:"address,omitempty"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) IsStaff() bool {
	return u.Role == constants.RoleAdmin || u.Role == constants.RoleBenevole
}
