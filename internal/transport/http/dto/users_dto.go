package dto

import "github.com/zilaportal/portal/internal/domain/enums"

type CreateUserRequest struct {
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	FullName  string           `json:"fullName"`
	Phone     string           `json:"phone"`
	UserTypes []enums.UserType `json:"userTypes"`
	Roles     []enums.Role     `json:"roles"`
}

type AccessRequestCreate struct {
	RequestedUserTypes []enums.UserType `json:"requestedUserTypes"`
	Note               string           `json:"note"`
}

type DecisionRequest struct {
	AdminNote string `json:"adminNote"`
}

type StatsResponse struct {
	PendingContent        map[enums.SubmittableKind]int `json:"pendingContent"`
	PendingContentTotal   int                           `json:"pendingContentTotal"`
	PendingAccessRequests int                           `json:"pendingAccessRequests"`
	UsersByStatus         map[enums.ApprovalStatus]int  `json:"usersByStatus,omitempty"`
}
