package model

import (
	"time"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/rules"
)

type User struct {
	ID             string               `json:"id"`
	Email          string               `json:"email"`
	FullName       string               `json:"fullName"`
	Phone          string               `json:"phone,omitempty"`
	PasswordHash   string               `json:"-"`
	UserTypes      []enums.UserType     `json:"userTypes"`
	Roles          []enums.Role         `json:"roles"`
	ApprovalStatus enums.ApprovalStatus `json:"approvalStatus"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

func (u User) Principal() rules.Principal {
	return rules.Principal{
		UserID:    u.ID,
		UserTypes: append([]enums.UserType(nil), u.UserTypes...),
		Roles:     append([]enums.Role(nil), u.Roles...),
		Status:    u.ApprovalStatus,
	}
}

type UserFilter struct {
	Status *enums.ApprovalStatus
	Limit  int
	Offset int
}
