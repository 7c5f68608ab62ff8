package client

import "github.com/zilaportal/portal/internal/domain/enums"

type (
	HospitalType = enums.HospitalType
	PropertyType = enums.PropertyType
	BusinessType = enums.BusinessType
	PlaceType    = enums.PlaceType
)

const (
	UserTypeGeneralUser      = enums.UserTypeGeneralUser
	UserTypeHomeTutor        = enums.UserTypeHomeTutor
	UserTypeToLetOwner       = enums.UserTypeToLetOwner
	UserTypeBusinessOwner    = enums.UserTypeBusinessOwner
	UserTypeContentVolunteer = enums.UserTypeContentVolunteer
)

const (
	RoleSuperAdmin       = enums.RoleSuperAdmin
	RoleAdmin            = enums.RoleAdmin
	RoleAreaModerator    = enums.RoleAreaModerator
	RoleContentVolunteer = enums.RoleContentVolunteer
)

const (
	ApprovalStatusPending   = enums.ApprovalStatusPending
	ApprovalStatusApproved  = enums.ApprovalStatusApproved
	ApprovalStatusRejected  = enums.ApprovalStatusRejected
	ApprovalStatusSuspended = enums.ApprovalStatusSuspended

	StatusPending  = enums.ContentStatusPending
	StatusApproved = enums.ContentStatusApproved
	StatusRejected = enums.ContentStatusRejected
)

const (
	KindHospital     = enums.KindHospital
	KindHomeTutor    = enums.KindHomeTutor
	KindToLet        = enums.KindToLet
	KindBusiness     = enums.KindBusiness
	KindTouristPlace = enums.KindTouristPlace
	KindBlog         = enums.KindBlog
)

const (
	HospitalTypeGovernment = enums.HospitalTypeGovernment
	HospitalTypePrivate    = enums.HospitalTypePrivate
)

const (
	PropertyTypeApartment = enums.PropertyTypeApartment
	PropertyTypeHouse     = enums.PropertyTypeHouse
	PropertyTypeRoom      = enums.PropertyTypeRoom
	PropertyTypeShop      = enums.PropertyTypeShop
	PropertyTypeOffice    = enums.PropertyTypeOffice
)

const (
	BusinessTypeRestaurant  = enums.BusinessTypeRestaurant
	BusinessTypeShop        = enums.BusinessTypeShop
	BusinessTypeHotel       = enums.BusinessTypeHotel
	BusinessTypePharmacy    = enums.BusinessTypePharmacy
	BusinessTypeElectronics = enums.BusinessTypeElectronics
	BusinessTypeClothing    = enums.BusinessTypeClothing
	BusinessTypeGrocery     = enums.BusinessTypeGrocery
	BusinessTypeBakery      = enums.BusinessTypeBakery
	BusinessTypeService     = enums.BusinessTypeService
	BusinessTypeOther       = enums.BusinessTypeOther
)

const (
	PlaceTypeHistorical    = enums.PlaceTypeHistorical
	PlaceTypeNatural       = enums.PlaceTypeNatural
	PlaceTypeReligious     = enums.PlaceTypeReligious
	PlaceTypeCultural      = enums.PlaceTypeCultural
	PlaceTypeEntertainment = enums.PlaceTypeEntertainment
	PlaceTypePark          = enums.PlaceTypePark
	PlaceTypeMuseum        = enums.PlaceTypeMuseum
	PlaceTypeTouristSpot   = enums.PlaceTypeTouristSpot
	PlaceTypeOther         = enums.PlaceTypeOther
)
