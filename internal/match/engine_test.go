package match_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"organmatch/internal/donor"
	"organmatch/internal/match"
	"organmatch/internal/waitlist"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
)

type EngineSuite struct {
	suite.Suite

	now time.Time
}

func (s *EngineSuite) SetupTest() {
	s.now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) donorData(blood id.BloodType, organ id.OrganType, markers id.HLAMarkers) donor.DonorData {
	return donor.DonorData{Markers: markers, Blood: blood, Organ: organ}
}

func (s *EngineSuite) recipient(data waitlist.RecipientData, createdAt time.Time) *waitlist.Recipient {
	r, err := waitlist.NewRecipient(id.NewIdentity(), data, createdAt)
	s.Require().NoError(err)
	return r
}

func (s *EngineSuite) TestEligible() {
	d := s.donorData("O-", "kidney", id.HLAMarkers{})

	s.Run("same blood and organ", func() {
		s.True(match.Eligible(d, waitlist.RecipientData{Blood: "O-", Organ: "kidney"}))
	})

	s.Run("different blood is ineligible even when transfusion-compatible", func() {
		// O- donates to everyone in transfusion terms; the filter still
		// requires exact equality.
		s.False(match.Eligible(d, waitlist.RecipientData{Blood: "A+", Organ: "kidney"}))
	})

	s.Run("different organ is ineligible", func() {
		s.False(match.Eligible(d, waitlist.RecipientData{Blood: "O-", Organ: "liver"}))
	})
}

func (s *EngineSuite) TestScoreComposition() {
	markers := id.HLAMarkers{1, 1, 1, 1, 1}
	d := s.donorData("O-", "kidney", markers)

	s.Run("all factors combine", func() {
		// 50 HLA + 80 urgency + 1 wait (30 days) + 50 pediatric + 49 geo.
		r := s.recipient(waitlist.RecipientData{
			Urgency:  80,
			Distance: 100,
			Markers:  markers,
			Blood:    "O-",
			Organ:    "kidney",
			Age:      15,
		}, s.now.Add(-30*24*time.Hour))

		score, err := match.Score(d, r, s.now)
		s.Require().NoError(err)
		s.Equal(uint64(230), score)
	})

	s.Run("partial marker overlap scores per slot", func() {
		r := s.recipient(waitlist.RecipientData{
			Markers: id.HLAMarkers{1, 1, 9, 9, 9},
			Blood:   "O-",
			Organ:   "kidney",
			Age:     40,
		}, s.now)

		score, err := match.Score(d, r, s.now)
		s.Require().NoError(err)
		// 20 HLA + 50 geo at distance zero.
		s.Equal(uint64(70), score)
	})

	s.Run("wait score caps at 50", func() {
		r := s.recipient(waitlist.RecipientData{
			Markers:  id.HLAMarkers{9, 9, 9, 9, 9},
			Blood:    "O-",
			Organ:    "kidney",
			Age:      40,
			Distance: 5000,
		}, s.now.Add(-10*365*24*time.Hour))

		score, err := match.Score(d, r, s.now)
		s.Require().NoError(err)
		s.Equal(uint64(50), score)
	})

	s.Run("future registration clamps wait to zero", func() {
		r := s.recipient(waitlist.RecipientData{
			Markers:  id.HLAMarkers{9, 9, 9, 9, 9},
			Blood:    "O-",
			Organ:    "kidney",
			Age:      40,
			Distance: 5000,
		}, s.now.Add(24*time.Hour))

		score, err := match.Score(d, r, s.now)
		s.Require().NoError(err)
		s.Equal(uint64(0), score)
	})

	s.Run("pediatric bonus applies through age 18", func() {
		base := waitlist.RecipientData{
			Markers:  id.HLAMarkers{9, 9, 9, 9, 9},
			Blood:    "O-",
			Organ:    "kidney",
			Distance: 5000,
		}

		base.Age = 18
		young, err := match.Score(d, s.recipient(base, s.now), s.now)
		s.Require().NoError(err)
		s.Equal(uint64(50), young)

		base.Age = 19
		adult, err := match.Score(d, s.recipient(base, s.now), s.now)
		s.Require().NoError(err)
		s.Equal(uint64(0), adult)
	})

	s.Run("geo score floors at zero beyond 5000 distance", func() {
		r := s.recipient(waitlist.RecipientData{
			Markers:  id.HLAMarkers{9, 9, 9, 9, 9},
			Blood:    "O-",
			Organ:    "kidney",
			Age:      40,
			Distance: 1_000_000,
		}, s.now)

		score, err := match.Score(d, r, s.now)
		s.Require().NoError(err)
		s.Equal(uint64(0), score)
	})
}

func (s *EngineSuite) TestSelectBest() {
	markers := id.HLAMarkers{1, 1, 1, 1, 1}
	d := s.donorData("O-", "kidney", markers)

	s.Run("picks the highest-scoring candidate", func() {
		low := s.recipient(waitlist.RecipientData{
			Urgency: 10, Distance: 5000, Markers: markers, Blood: "O-", Organ: "kidney", Age: 40,
		}, s.now)
		high := s.recipient(waitlist.RecipientData{
			Urgency: 90, Distance: 5000, Markers: markers, Blood: "O-", Organ: "kidney", Age: 40,
		}, s.now)

		best, score, err := match.SelectBest(d, []*waitlist.Recipient{low, high}, s.now)
		s.Require().NoError(err)
		s.Equal(high.Owner, best.Owner)
		s.Equal(uint64(140), score)
	})

	s.Run("ties keep the first candidate seen", func() {
		first := s.recipient(waitlist.RecipientData{
			Urgency: 50, Distance: 5000, Markers: markers, Blood: "O-", Organ: "kidney", Age: 40,
		}, s.now)
		second := s.recipient(waitlist.RecipientData{
			Urgency: 50, Distance: 5000, Markers: markers, Blood: "O-", Organ: "kidney", Age: 40,
		}, s.now)

		best, _, err := match.SelectBest(d, []*waitlist.Recipient{first, second}, s.now)
		s.Require().NoError(err)
		s.Equal(first.Owner, best.Owner)
	})

	s.Run("ineligible blood is skipped", func() {
		incompatible := s.recipient(waitlist.RecipientData{
			Urgency: 100, Markers: markers, Blood: "A+", Organ: "kidney", Age: 40,
		}, s.now)
		eligible := s.recipient(waitlist.RecipientData{
			Urgency: 10, Distance: 5000, Markers: markers, Blood: "O-", Organ: "kidney", Age: 40,
		}, s.now)

		best, _, err := match.SelectBest(d, []*waitlist.Recipient{incompatible, eligible}, s.now)
		s.Require().NoError(err)
		s.Equal(eligible.Owner, best.Owner)
	})

	s.Run("matched candidates are skipped", func() {
		taken := s.recipient(waitlist.RecipientData{
			Urgency: 100, Markers: markers, Blood: "O-", Organ: "kidney", Age: 40,
		}, s.now)
		taken.ApplyMatch(s.now)
		waiting := s.recipient(waitlist.RecipientData{
			Urgency: 10, Distance: 5000, Markers: markers, Blood: "O-", Organ: "kidney", Age: 40,
		}, s.now)

		best, _, err := match.SelectBest(d, []*waitlist.Recipient{taken, waiting}, s.now)
		s.Require().NoError(err)
		s.Equal(waiting.Owner, best.Owner)
	})

	s.Run("empty candidate set finds no match", func() {
		_, _, err := match.SelectBest(d, nil, s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNoMatch))
	})

	s.Run("zero-score candidates are never selected", func() {
		zero := s.recipient(waitlist.RecipientData{
			Markers: id.HLAMarkers{9, 9, 9, 9, 9}, Blood: "O-", Organ: "kidney", Age: 40, Distance: 5000,
		}, s.now)

		_, _, err := match.SelectBest(d, []*waitlist.Recipient{zero}, s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNoMatch))
	})

	s.Run("all ineligible finds no match", func() {
		wrongOrgan := s.recipient(waitlist.RecipientData{
			Urgency: 100, Markers: markers, Blood: "O-", Organ: "liver", Age: 40,
		}, s.now)

		_, _, err := match.SelectBest(d, []*waitlist.Recipient{wrongOrgan}, s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNoMatch))
	})
}
