package dto

import (
	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
)

type UpazilaRequest struct {
	Name          string `json:"name"`
	NameBn        string `json:"nameBn"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	DescriptionBn string `json:"descriptionBn"`
	IsActive      *bool  `json:"isActive"`
	DisplayOrder  *int   `json:"displayOrder"`
}

type UpazilaDetailResponse struct {
	model.Upazila
	Counts map[enums.SubmittableKind]int `json:"counts"`
}

type SeedResponse struct {
	Inserted int `json:"inserted"`
}

type SettingValueRequest struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}
