package enums

import "strings"

// UserType is a content creation capability held by a user.
type UserType string

const (
	UserTypeGeneralUser      UserType = "GENERAL_USER"
	UserTypeHomeTutor        UserType = "HOME_TUTOR"
	UserTypeToLetOwner       UserType = "TO_LET_OWNER"
	UserTypeBusinessOwner    UserType = "BUSINESS_OWNER"
	UserTypeContentVolunteer UserType = "CONTENT_VOLUNTEER"
)

var userTypes = []UserType{
	UserTypeGeneralUser,
	UserTypeHomeTutor,
	UserTypeToLetOwner,
	UserTypeBusinessOwner,
	UserTypeContentVolunteer,
}

func AllUserTypes() []UserType {
	out := make([]UserType, len(userTypes))
	copy(out, userTypes)
	return out
}

func (t UserType) Valid() bool {
	for _, known := range userTypes {
		if t == known {
			return true
		}
	}
	return false
}

func ParseUserType(raw string) (UserType, bool) {
	t := UserType(strings.ToUpper(strings.TrimSpace(raw)))
	return t, t.Valid()
}
