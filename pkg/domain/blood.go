package domain

import "fmt"

// BloodType is one of the eight ABO/Rh combinations.
// This is a domain primitive that enforces validity at parse time.
type BloodType string

const (
	BloodAPositive  BloodType = "A+"
	BloodANegative  BloodType = "A-"
	BloodBPositive  BloodType = "B+"
	BloodBNegative  BloodType = "B-"
	BloodABPositive BloodType = "AB+"
	BloodABNegative BloodType = "AB-"
	BloodOPositive  BloodType = "O+"
	BloodONegative  BloodType = "O-"
)

var validBloodTypes = map[BloodType]struct{}{
	BloodAPositive: {}, BloodANegative: {},
	BloodBPositive: {}, BloodBNegative: {},
	BloodABPositive: {}, BloodABNegative: {},
	BloodOPositive: {}, BloodONegative: {},
}

// ParseBloodType validates and returns a BloodType.
// Returns an error if the value is not one of the eight variants.
func ParseBloodType(s string) (BloodType, error) {
	b := BloodType(s)
	if _, ok := validBloodTypes[b]; !ok {
		return "", fmt.Errorf("unknown blood type: %q", s)
	}
	return b, nil
}

func (b BloodType) String() string {
	return string(b)
}

// IsValid reports whether the value is one of the eight variants.
func (b BloodType) IsValid() bool {
	_, ok := validBloodTypes[b]
	return ok
}

// donatableTo is the directional ABO/Rh compatibility relation: which
// recipient types each donor type may serve. O- is the universal donor.
//
// NOTE: the match filter deliberately does NOT consult this relation; it
// requires exact equality of donor and recipient blood type. The relation is
// kept as the likely future filter once clinical sign-off widens eligibility,
// since switching to it changes which pairs are ever scored.
var donatableTo = map[BloodType][]BloodType{
	BloodONegative:  {BloodAPositive, BloodANegative, BloodBPositive, BloodBNegative, BloodABPositive, BloodABNegative, BloodOPositive, BloodONegative},
	BloodOPositive:  {BloodOPositive, BloodAPositive, BloodBPositive, BloodABPositive},
	BloodANegative:  {BloodANegative, BloodABNegative},
	BloodAPositive:  {BloodAPositive, BloodABPositive},
	BloodBNegative:  {BloodBNegative, BloodABNegative},
	BloodBPositive:  {BloodBPositive, BloodABPositive},
	BloodABNegative: {BloodABNegative},
	BloodABPositive: {BloodABPositive},
}

// CanDonateTo reports whether blood of this type may be given to a recipient
// of the given type under the directional ABO/Rh relation.
func (b BloodType) CanDonateTo(recipient BloodType) bool {
	for _, r := range donatableTo[b] {
		if r == recipient {
			return true
		}
	}
	return false
}
