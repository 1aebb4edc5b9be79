package domain

// HLAMarkerSlots is the number of immunological marker slots compared between
// donor and recipient.
const HLAMarkerSlots = 5

// HLAMarkers is a fixed-length vector of immunological compatibility tags.
// Slots are compared position-wise; slot order is significant.
type HLAMarkers [HLAMarkerSlots]uint8

// MatchingSlots counts the positions at which both vectors carry the same tag.
func (m HLAMarkers) MatchingSlots(other HLAMarkers) int {
	count := 0
	for i := range m {
		if m[i] == other[i] {
			count++
		}
	}
	return count
}
