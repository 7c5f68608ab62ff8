package validate

import (
	"net/mail"
	"net/url"
	"strings"
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Email accepts an empty value; callers combine it with Required when needed.
func Email(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}

// URL accepts an empty value or an absolute http(s) URL.
func URL(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func Coordinates(lat, lon *float64) bool {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return false
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return false
	}
	return true
}
