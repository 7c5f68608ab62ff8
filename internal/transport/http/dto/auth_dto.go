package dto

import (
	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
)

type RegisterRequest struct {
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	FullName  string           `json:"fullName"`
	Phone     string           `json:"phone"`
	UserTypes []enums.UserType `json:"userTypes"`
	Note      string           `json:"note"`
}

type RegisterResponse struct {
	User          model.User           `json:"user"`
	AccessRequest *model.AccessRequest `json:"accessRequest,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthTokensResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresInSec int64      `json:"expiresInSec"`
	User         model.User `json:"user"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
