package dto

import (
	cataloguemodel "eca_backend/internals/features/catalogue/model"
	"eca_backend/internals/helpers/nullable"
)

type OuvrageCreateDTO struct {
	Title     string  `json:"title" validate:"required,min=1,max=255"`
	Author    string  `json:"author" validate:"required,min=1,max=255"`
	Publisher *string `json:"publisher,omitempty"`
	Year      *int    `json:"year,omitempty"`
	Summary   *string `json:"summary,omitempty"`
}

func (d OuvrageCreateDTO) ToModel() cataloguemodel.OuvrageModel {
	return cataloguemodel.OuvrageModel{
		Title:     d.Title,
		Author:    d.Author,
		Publisher: d.Publisher,
		Year:      d.Year,
		Summary:   d.Summary,
	}
}

type OuvragePatchDTO struct {
	Title     nullable.Field[string] `json:"title"`
	Author    nullable.Field[string] `json:"author"`
	Publisher nullable.Field[string] `json:"publisher"`
	Year      nullable.Field[int]    `json:"year"`
	Summary   nullable.Field[string] `json:"summary"`
}

func (d OuvragePatchDTO) ApplyTo(m *cataloguemodel.OuvrageModel) {
	d.Title.ApplyValue(&m.Title)
	d.Author.ApplyValue(&m.Author)
	d.Publisher.Apply(&m.Publisher)
	d.Year.Apply(&m.Year)
	d.Summary.Apply(&m.Summary)
}
