package model

import (
	"strings"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/rules"
	"github.com/zilaportal/portal/internal/pkg/validate"
)

// Payload is the kind specific body of a submission. Validate may fill in
// defaults before checking required fields.
type Payload interface {
	Validate() error
	Category() string
}

// Sluggable payloads get a unique slug derived from SlugSource.
type Sluggable interface {
	SlugSource() string
}

type Hospital struct {
	Name       string             `json:"name"`
	NameBn     string             `json:"nameBn,omitempty"`
	Type       enums.HospitalType `json:"type"`
	Address    string             `json:"address,omitempty"`
	AddressBn  string             `json:"addressBn,omitempty"`
	Phone      string             `json:"phone"`
	Email      string             `json:"email,omitempty"`
	Services   string             `json:"services,omitempty"`
	ServicesBn string             `json:"servicesBn,omitempty"`
	Website    string             `json:"website,omitempty"`
}

func (h *Hospital) Validate() error {
	h.Type = enums.HospitalType(strings.ToUpper(strings.TrimSpace(string(h.Type))))
	if err := required("name", h.Name, "phone", h.Phone); err != nil {
		return err
	}
	if !h.Type.Valid() {
		return rules.NewValidationError("type", "must be GOVERNMENT or PRIVATE")
	}
	return contact(h.Email, h.Website)
}

func (h *Hospital) Category() string { return string(h.Type) }

type Tutor struct {
	TutorName       string  `json:"tutorName"`
	TutorNameBn     string  `json:"tutorNameBn,omitempty"`
	Qualification   string  `json:"qualification,omitempty"`
	QualificationBn string  `json:"qualificationBn,omitempty"`
	Subjects        string  `json:"subjects"`
	SubjectsBn      string  `json:"subjectsBn,omitempty"`
	Classes         string  `json:"classes"`
	ExperienceYears int     `json:"experienceYears,omitempty"`
	ExpectedFee     float64 `json:"expectedFee,omitempty"`
	PreferredArea   string  `json:"preferredArea,omitempty"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email,omitempty"`
	AdditionalInfo  string  `json:"additionalInfo,omitempty"`
}

func (t *Tutor) Validate() error {
	if err := required("tutorName", t.TutorName, "phone", t.Phone, "subjects", t.Subjects, "classes", t.Classes); err != nil {
		return err
	}
	if t.ExperienceYears < 0 {
		return rules.NewValidationError("experienceYears", "must not be negative")
	}
	if t.ExpectedFee < 0 {
		return rules.NewValidationError("expectedFee", "must not be negative")
	}
	return contact(t.Email, "")
}

func (t *Tutor) Category() string { return "" }

type ToLet struct {
	Title        string             `json:"title"`
	TitleBn      string             `json:"titleBn,omitempty"`
	PropertyType enums.PropertyType `json:"propertyType"`
	Rent         float64            `json:"rent"`
	Bedrooms     int                `json:"bedrooms,omitempty"`
	Bathrooms    int                `json:"bathrooms,omitempty"`
	Area         string             `json:"area,omitempty"`
	Address      string             `json:"address"`
	AddressBn    string             `json:"addressBn,omitempty"`
	Facilities   string             `json:"facilities,omitempty"`
	FacilitiesBn string             `json:"facilitiesBn,omitempty"`
	Description  string             `json:"description,omitempty"`
	ContactName  string             `json:"contactName,omitempty"`
	ContactPhone string             `json:"contactPhone"`
	ContactEmail string             `json:"contactEmail,omitempty"`
	Latitude     *float64           `json:"latitude,omitempty"`
	Longitude    *float64           `json:"longitude,omitempty"`
}

func (l *ToLet) Validate() error {
	l.PropertyType = enums.PropertyType(strings.ToUpper(strings.TrimSpace(string(l.PropertyType))))
	if l.PropertyType == "" {
		l.PropertyType = enums.PropertyTypeApartment
	}
	if err := required("title", l.Title, "address", l.Address, "contactPhone", l.ContactPhone); err != nil {
		return err
	}
	if l.Rent <= 0 {
		return rules.NewValidationError("rent", "must be greater than zero")
	}
	if !l.PropertyType.Valid() {
		return rules.NewValidationError("propertyType", "is not a known property type")
	}
	if l.Bedrooms < 0 || l.Bathrooms < 0 {
		return rules.NewValidationError("bedrooms", "must not be negative")
	}
	if !validate.Coordinates(l.Latitude, l.Longitude) {
		return rules.NewValidationError("latitude", "coordinates are out of range")
	}
	if !validate.Email(l.ContactEmail) {
		return rules.NewValidationError("contactEmail", "is not a valid address")
	}
	return nil
}

func (l *ToLet) Category() string { return string(l.PropertyType) }

type Business struct {
	Name          string             `json:"name"`
	NameBn        string             `json:"nameBn,omitempty"`
	BusinessType  enums.BusinessType `json:"businessType"`
	Description   string             `json:"description,omitempty"`
	DescriptionBn string             `json:"descriptionBn,omitempty"`
	Address       string             `json:"address,omitempty"`
	AddressBn     string             `json:"addressBn,omitempty"`
	Phone         string             `json:"phone"`
	Email         string             `json:"email,omitempty"`
	Website       string             `json:"website,omitempty"`
	OpeningHours  string             `json:"openingHours,omitempty"`
	Specialties   string             `json:"specialties,omitempty"`
	Latitude      *float64           `json:"latitude,omitempty"`
	Longitude     *float64           `json:"longitude,omitempty"`
}

func (b *Business) Validate() error {
	b.BusinessType = enums.BusinessType(strings.ToUpper(strings.TrimSpace(string(b.BusinessType))))
	if err := required("name", b.Name, "businessType", string(b.BusinessType), "phone", b.Phone); err != nil {
		return err
	}
	if !b.BusinessType.Valid() {
		return rules.NewValidationError("businessType", "is not a known business type")
	}
	if !validate.Coordinates(b.Latitude, b.Longitude) {
		return rules.NewValidationError("latitude", "coordinates are out of range")
	}
	return contact(b.Email, b.Website)
}

func (b *Business) Category() string { return string(b.BusinessType) }

type TouristPlace struct {
	Name            string          `json:"name"`
	NameBn          string          `json:"nameBn,omitempty"`
	PlaceType       enums.PlaceType `json:"placeType"`
	Description     string          `json:"description"`
	DescriptionBn   string          `json:"descriptionBn,omitempty"`
	Address         string          `json:"address,omitempty"`
	AddressBn       string          `json:"addressBn,omitempty"`
	BestTimeToVisit string          `json:"bestTimeToVisit,omitempty"`
	EntryFee        string          `json:"entryFee,omitempty"`
	OpeningHours    string          `json:"openingHours,omitempty"`
	Features        string          `json:"features,omitempty"`
	FeaturesBn      string          `json:"featuresBn,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Email           string          `json:"email,omitempty"`
	Website         string          `json:"website,omitempty"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`
}

func (p *TouristPlace) Validate() error {
	p.PlaceType = enums.PlaceType(strings.ToUpper(strings.TrimSpace(string(p.PlaceType))))
	if p.PlaceType == "" {
		p.PlaceType = enums.PlaceTypeHistorical
	}
	if err := required("name", p.Name, "description", p.Description); err != nil {
		return err
	}
	if !p.PlaceType.Valid() {
		return rules.NewValidationError("placeType", "is not a known place type")
	}
	if !validate.Coordinates(p.Latitude, p.Longitude) {
		return rules.NewValidationError("latitude", "coordinates are out of range")
	}
	return contact(p.Email, p.Website)
}

func (p *TouristPlace) Category() string { return string(p.PlaceType) }

type Blog struct {
	Title         string   `json:"title"`
	TitleBn       string   `json:"titleBn,omitempty"`
	Content       string   `json:"content"`
	ContentBn     string   `json:"contentBn,omitempty"`
	Excerpt       string   `json:"excerpt,omitempty"`
	FeaturedImage string   `json:"featuredImage,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

func (b *Blog) Validate() error {
	if err := required("title", b.Title, "content", b.Content); err != nil {
		return err
	}
	if !validate.URL(b.FeaturedImage) {
		return rules.NewValidationError("featuredImage", "must be an http(s) url")
	}
	tags := b.Tags[:0]
	for _, tag := range b.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	b.Tags = tags
	return nil
}

func (b *Blog) Category() string { return "" }

func (b *Blog) SlugSource() string { return b.Title }

// required takes field/value pairs and reports the first blank one.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if !validate.Required(pairs[i+1]) {
			return rules.NewValidationError(pairs[i], "is required")
		}
	}
	return nil
}

func contact(email, website string) error {
	if !validate.Email(email) {
		return rules.NewValidationError("email", "is not a valid address")
	}
	if !validate.URL(website) {
		return rules.NewValidationError("website", "must be an http(s) url")
	}
	return nil
}
