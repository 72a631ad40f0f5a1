package dto

import (
	usermodel "eca_backend/internals/features/users/model"
	"eca_backend/internals/helpers/nullable"
)

type UserCreateDTO struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role" validate:"required"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Address  *string `json:"address,omitempty"`
}

func (d UserCreateDTO) ToModel() usermodel.UserModel {
	return usermodel.UserModel{
		FullName: d.FullName,
		Email:    d.Email,
		Phone:    d.Phone,
		Role:     d.Role,
		Address:  d.Address,
		IsActive: true,
	}
}

type UserPatchDTO struct {
	FullName nullable.Field[string] `json:"full_name"`
	Email    nullable.Field[string] `json:"email"`
	Phone    nullable.Field[string] `json:"phone"`
	Address  nullable.Field[string] `json:"address"`
	IsActive nullable.Field[bool]   `json:"is_active"`
}

func (d UserPatchDTO) ApplyTo(m *usermodel.UserModel) {
	d.FullName.ApplyValue(&m.FullName)
	d.Email.ApplyValue(&m.Email)
	d.Phone.Apply(&m.Phone)
	d.Address.Apply(&m.Address)
	d.IsActive.ApplyValue(&m.IsActive)
}
