package match

import (
	"time"

	"organmatch/internal/donor"
	"organmatch/internal/waitlist"
	dErrors "organmatch/pkg/domain-errors"
)

// Scoring weights and caps. The total of all maxima is 300, so any score type
// of at least that range is safe; uint64 with checked addition keeps the
// arithmetic honest anyway.
const (
	pointsPerMarkerSlot = 10
	maxWaitScore        = 50
	waitScoreUnitSecs   = 30 * 24 * 60 * 60 // one scoring step per 30 days waited
	pediatricBonus      = 50
	pediatricAgeLimit   = 18
	geoBaseScore        = 50
	geoDistanceUnit     = 100
)

// Eligible reports whether the donated organ may be offered to the candidate
// at all. Blood type and organ type must be exactly equal; the directional
// ABO relation (domain.BloodType.CanDonateTo) is deliberately not consulted
// here.
func Eligible(d donor.DonorData, r waitlist.RecipientData) bool {
	return d.Blood == r.Blood && d.Organ == r.Organ
}

// Score computes the multi-factor priority score for an eligible pair:
// position-wise HLA marker equality, medical urgency, capped wait time,
// pediatric bonus, and geographic proximity. All arithmetic is integer with
// checked addition.
func Score(d donor.DonorData, r *waitlist.Recipient, now time.Time) (uint64, error) {
	hla := uint64(d.Markers.MatchingSlots(r.Data.Markers)) * pointsPerMarkerSlot

	urgency := uint64(r.Data.Urgency)

	waitSecs := now.Unix() - r.CreatedAt.Unix()
	if waitSecs < 0 {
		waitSecs = 0
	}
	wait := uint64(waitSecs / waitScoreUnitSecs)
	if wait > maxWaitScore {
		wait = maxWaitScore
	}

	var pediatric uint64
	if r.Data.Age <= pediatricAgeLimit {
		pediatric = pediatricBonus
	}

	var geo uint64
	if steps := uint64(r.Data.Distance) / geoDistanceUnit; steps < geoBaseScore {
		geo = geoBaseScore - steps
	}

	total := hla
	for _, term := range []uint64{urgency, wait, pediatric, geo} {
		var err error
		total, err = checkedAdd(total, term)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// SelectBest scans the caller-supplied candidates once, keeping the single
// highest-scoring eligible candidate; ties keep the first one seen. Only
// active candidates are scored; ineligible ones are skipped silently. Fails
// with a no-match error when nothing eligible scores above zero.
//
// The pass is O(len(candidates)) with O(1) extra state. The engine holds no
// store access and retains nothing between calls.
func SelectBest(d donor.DonorData, candidates []*waitlist.Recipient, now time.Time) (*waitlist.Recipient, uint64, error) {
	var (
		best      *waitlist.Recipient
		bestScore uint64
	)
	for _, candidate := range candidates {
		if candidate == nil || !candidate.IsActive() {
			continue
		}
		if !Eligible(d, candidate.Data) {
			continue
		}
		score, err := Score(d, candidate, now)
		if err != nil {
			return nil, 0, err
		}
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if best == nil {
		return nil, 0, dErrors.New(dErrors.CodeNoMatch, "no compatible recipient found")
	}
	return best, bestScore, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, dErrors.New(dErrors.CodeOverflow, "match score would overflow")
	}
	return sum, nil
}
