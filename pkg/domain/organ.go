package domain

import "fmt"

// OrganType is one of the five transplantable organ kinds handled by the
// program.
type OrganType string

const (
	OrganKidney   OrganType = "kidney"
	OrganLiver    OrganType = "liver"
	OrganHeart    OrganType = "heart"
	OrganLung     OrganType = "lung"
	OrganPancreas OrganType = "pancreas"
)

var validOrganTypes = map[OrganType]struct{}{
	OrganKidney: {}, OrganLiver: {}, OrganHeart: {}, OrganLung: {}, OrganPancreas: {},
}

// ParseOrganType validates and returns an OrganType.
func ParseOrganType(s string) (OrganType, error) {
	o := OrganType(s)
	if _, ok := validOrganTypes[o]; !ok {
		return "", fmt.Errorf("unknown organ type: %q", s)
	}
	return o, nil
}

func (o OrganType) String() string {
	return string(o)
}

// IsValid reports whether the value is one of the five variants.
func (o OrganType) IsValid() bool {
	_, ok := validOrganTypes[o]
	return ok
}
