package client

import (
	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	settingssvc "github.com/zilaportal/portal/internal/services/settings"
	slidersvc "github.com/zilaportal/portal/internal/services/sliders"
	"github.com/zilaportal/portal/internal/transport/http/dto"
)

// Wire types are shared with the server so the SDK cannot drift from it.
type (
	User          = model.User
	AccessRequest = model.AccessRequest
	Upazila       = model.Upazila
	Slider        = model.Slider
	Setting       = model.SiteSetting
	AuditEvent    = model.AuditEvent

	Hospital     = model.Hospital
	Tutor        = model.Tutor
	ToLet        = model.ToLet
	Business     = model.Business
	TouristPlace = model.TouristPlace
	Blog         = model.Blog

	RegisterRequest   = dto.RegisterRequest
	RegisterResponse  = dto.RegisterResponse
	CreateUserRequest = dto.CreateUserRequest
	UpazilaRequest    = dto.UpazilaRequest
	UpazilaDetail     = dto.UpazilaDetailResponse
	Stats             = dto.StatsResponse
	SliderInput       = slidersvc.Input
	SettingUpdate     = settingssvc.Update

	UserType       = enums.UserType
	Role           = enums.Role
	ApprovalStatus = enums.ApprovalStatus
	ContentStatus  = enums.ContentStatus
	Kind           = enums.SubmittableKind
)

type listResponse[T any] struct {
	Items []T `json:"items"`
}
