//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"organmatch/internal/platform/events"
	id "organmatch/pkg/domain"
	"organmatch/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda  *containers.RedpandaContainer
	publisher *events.KafkaPublisher
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := events.NewKafkaPublisher(ctx, s.redpanda.Brokers, "organmatch.events.test", logger)
	s.Require().NoError(err)
	s.publisher = publisher
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.NoError(s.publisher.Close(ctx))
	}
}

// consume reads from the start of the topic until want records keyed by key
// have arrived.
func (s *KafkaPublisherSuite) consume(ctx context.Context, want int, key string) []*kgo.Record {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics("organmatch.events.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer client.Close()

	var records []*kgo.Record
	for len(records) < want {
		fetches := client.PollFetches(ctx)
		s.Require().NoError(fetches.Err())
		fetches.EachRecord(func(r *kgo.Record) {
			if string(r.Key) == key {
				records = append(records, r)
			}
		})
	}
	return records
}

func (s *KafkaPublisherSuite) TestEmitDeliversKeyedJSON() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recipient := id.NewIdentity()
	donorID := id.NewIdentity()

	err := s.publisher.Emit(ctx, events.Event{
		Type:      events.TypeMatchFound,
		Recipient: recipient,
		Donor:     donorID,
		Score:     230,
	})
	s.Require().NoError(err)

	// match_found records are keyed by the donor
	records := s.consume(ctx, 1, donorID.String())
	s.Require().Len(records, 1)

	var got events.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(events.TypeMatchFound, got.Type)
	s.Equal(recipient, got.Recipient)
	s.Equal(donorID, got.Donor)
	s.Equal(uint64(230), got.Score)
	s.False(got.Timestamp.IsZero(), "publisher must stamp unstamped events")
}

func (s *KafkaPublisherSuite) TestEventsForOneEntityShareAPartitionKey() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	owner := id.NewIdentity()
	for urgency := uint8(1); urgency <= 3; urgency++ {
		err := s.publisher.Emit(ctx, events.Event{
			Type:      events.TypeRecipientUpdated,
			Recipient: owner,
			Urgency:   urgency,
		})
		s.Require().NoError(err)
	}

	records := s.consume(ctx, 3, owner.String())
	s.Len(records, 3)

	var urgencies []uint8
	for _, r := range records {
		var got events.Event
		s.Require().NoError(json.Unmarshal(r.Value, &got))
		urgencies = append(urgencies, got.Urgency)
	}
	s.ElementsMatch([]uint8{1, 2, 3}, urgencies)
}
