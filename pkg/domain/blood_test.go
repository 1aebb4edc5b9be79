package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBloodType(t *testing.T) {
	for _, s := range []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"} {
		b, err := ParseBloodType(s)
		require.NoError(t, err)
		assert.Equal(t, s, b.String())
	}

	_, err := ParseBloodType("C+")
	assert.Error(t, err)
	_, err = ParseBloodType("")
	assert.Error(t, err)
}

func TestBloodTypeDirectionalCompatibility(t *testing.T) {
	// O- is the universal donor.
	for b := range validBloodTypes {
		assert.True(t, BloodONegative.CanDonateTo(b), "O- should donate to %s", b)
	}

	// AB+ can only serve AB+.
	assert.True(t, BloodABPositive.CanDonateTo(BloodABPositive))
	assert.False(t, BloodABPositive.CanDonateTo(BloodONegative))
	assert.False(t, BloodABPositive.CanDonateTo(BloodAPositive))

	// Rh-negative donors do not serve Rh-positive variants outside the O- row.
	assert.True(t, BloodANegative.CanDonateTo(BloodABNegative))
	assert.False(t, BloodANegative.CanDonateTo(BloodBPositive))
}

func TestHLAMarkersMatchingSlots(t *testing.T) {
	a := HLAMarkers{1, 2, 3, 4, 5}
	assert.Equal(t, 5, a.MatchingSlots(a))
	assert.Equal(t, 0, a.MatchingSlots(HLAMarkers{5, 4, 9, 8, 7}))
	// Position-wise only: same multiset in a different order does not count.
	assert.Equal(t, 1, a.MatchingSlots(HLAMarkers{2, 1, 3, 5, 4}))
}

func TestParseOrganType(t *testing.T) {
	for _, s := range []string{"kidney", "liver", "heart", "lung", "pancreas"} {
		o, err := ParseOrganType(s)
		require.NoError(t, err)
		assert.Equal(t, s, o.String())
	}

	_, err := ParseOrganType("cornea")
	assert.Error(t, err)
}
