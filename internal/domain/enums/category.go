package enums

type HospitalType string

const (
	HospitalTypeGovernment HospitalType = "GOVERNMENT"
	HospitalTypePrivate    HospitalType = "PRIVATE"
)

func (t HospitalType) Valid() bool {
	return t == HospitalTypeGovernment || t == HospitalTypePrivate
}

type PropertyType string

const (
	PropertyTypeApartment PropertyType = "APARTMENT"
	PropertyTypeHouse     PropertyType = "HOUSE"
	PropertyTypeRoom      PropertyType = "ROOM"
	PropertyTypeShop      PropertyType = "SHOP"
	PropertyTypeOffice    PropertyType = "OFFICE"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeRoom, PropertyTypeShop, PropertyTypeOffice:
		return true
	default:
		return false
	}
}

type BusinessType string

const (
	BusinessTypeRestaurant  BusinessType = "RESTAURANT"
	BusinessTypeShop        BusinessType = "SHOP"
	BusinessTypeHotel       BusinessType = "HOTEL"
	BusinessTypePharmacy    BusinessType = "PHARMACY"
	BusinessTypeElectronics BusinessType = "ELECTRONICS"
	BusinessTypeClothing    BusinessType = "CLOTHING"
	BusinessTypeGrocery     BusinessType = "GROCERY"
	BusinessTypeBakery      BusinessType = "BAKERY"
	BusinessTypeService     BusinessType = "SERVICE"
	BusinessTypeOther       BusinessType = "OTHER"
)

func (t BusinessType) Valid() bool {
	switch t {
	case BusinessTypeRestaurant, BusinessTypeShop, BusinessTypeHotel, BusinessTypePharmacy,
		BusinessTypeElectronics, BusinessTypeClothing, BusinessTypeGrocery, BusinessTypeBakery,
		BusinessTypeService, BusinessTypeOther:
		return true
	default:
		return false
	}
}

type PlaceType string

const (
	PlaceTypeHistorical    PlaceType = "HISTORICAL"
	PlaceTypeNatural       PlaceType = "NATURAL"
	PlaceTypeReligious     PlaceType = "RELIGIOUS"
	PlaceTypeCultural      PlaceType = "CULTURAL"
	PlaceTypeEntertainment PlaceType = "ENTERTAINMENT"
	PlaceTypePark          PlaceType = "PARK"
	PlaceTypeMuseum        PlaceType = "MUSEUM"
	PlaceTypeTouristSpot   PlaceType = "TOURIST_SPOT"
	PlaceTypeOther         PlaceType = "OTHER"
)

func (t PlaceType) Valid() bool {
	switch t {
	case PlaceTypeHistorical, PlaceTypeNatural, PlaceTypeReligious, PlaceTypeCultural,
		PlaceTypeEntertainment, PlaceTypePark, PlaceTypeMuseum, PlaceTypeTouristSpot, PlaceTypeOther:
		return true
	default:
		return false
	}
}
