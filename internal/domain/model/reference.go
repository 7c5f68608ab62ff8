package model

import "time"

type Upazila struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	NameBn        string    `json:"nameBn,omitempty"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	DescriptionBn string    `json:"descriptionBn,omitempty"`
	IsActive      bool      `json:"isActive"`
	DisplayOrder  int       `json:"displayOrder"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Slider struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	TitleBn       string    `json:"titleBn,omitempty"`
	Description   string    `json:"description,omitempty"`
	DescriptionBn string    `json:"descriptionBn,omitempty"`
	ImageURL      string    `json:"imageUrl"`
	LinkURL       string    `json:"linkUrl,omitempty"`
	ButtonText    string    `json:"buttonText,omitempty"`
	DisplayOrder  int       `json:"displayOrder"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type SiteSetting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AuditEvent struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   string         `json:"targetId"`
	Props      map[string]any `json:"props,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
