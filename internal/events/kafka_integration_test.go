//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"attestgate/internal/events"
	"attestgate/pkg/testutil/containers"
)

// =============================================================================
// Kafka Publisher Integration Suite
// =============================================================================

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

const testTopic = "attestgate.events.test"

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())

	var err error
	s.publisher, err = events.NewKafkaPublisher(context.Background(),
		[]string{s.redpanda.Broker}, testTopic, slog.New(slog.DiscardHandler))
	s.Require().NoError(err)
	s.T().Cleanup(s.publisher.Close)
}

func (s *KafkaPublisherSuite) TestPublishRoundTrip() {
	ctx := context.Background()

	want := events.Event{
		Type:      events.TypePaused,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		RequestID: "req-1",
		Actor:     "0x0000000000000000000000000000000000000001",
	}
	s.Require().NoError(s.publisher.Publish(ctx, want))

	// Reconnecting publisher must tolerate the existing topic.
	second, err := events.NewKafkaPublisher(ctx, []string{s.redpanda.Broker}, testTopic, slog.New(slog.DiscardHandler))
	s.Require().NoError(err)
	second.Close()

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(testTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().NotEmpty(records)
	s.Equal(string(events.TypePaused), string(records[0].Key))

	var got events.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(want.Type, got.Type)
	s.Equal(want.RequestID, got.RequestID)
	s.Equal(want.Actor, got.Actor)
}
