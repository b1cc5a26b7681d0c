//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	id "fundledger/pkg/domain"
	audit "fundledger/pkg/platform/audit"
	auditkafka "fundledger/pkg/platform/audit/store/kafka"
	"fundledger/pkg/testutil/containers"
)

const testTopic = "fundledger.events.test"

type KafkaSinkSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	sink     *auditkafka.Sink
}

func TestKafkaSinkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSinkSuite))
}

func (s *KafkaSinkSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())

	sink, err := auditkafka.NewSink(context.Background(), s.redpanda.Brokers, testTopic)
	s.Require().NoError(err)
	s.sink = sink
	s.T().Cleanup(sink.Close)
}

func (s *KafkaSinkSuite) TestNewSinkIsIdempotent() {
	// Creating a sink for an existing topic must not fail.
	again, err := auditkafka.NewSink(context.Background(), s.redpanda.Brokers, testTopic)
	s.Require().NoError(err)
	again.Close()
}

func (s *KafkaSinkSuite) TestAppendDeliversKeyedEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	events := []audit.Event{
		{
			ID:        uuid.New(),
			Category:  audit.CategoryLedger,
			Principal: id.Principal("alice"),
			Action:    audit.ActionProjectFunded,
			ProjectID: 1,
			Amount:    600,
			Timestamp: time.Now().UTC(),
		},
		{
			ID:        uuid.New(),
			Category:  audit.CategoryLedger,
			Principal: id.Principal("alice"),
			Action:    audit.ActionGoalReached,
			ProjectID: 1,
			Timestamp: time.Now().UTC(),
		},
	}
	for _, event := range events {
		s.Require().NoError(s.sink.Append(ctx, event))
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(testTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var got []audit.Event
	for len(got) < len(events) {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(fetches.Err())
		fetches.EachRecord(func(record *kgo.Record) {
			s.Equal("alice", string(record.Key), "events are keyed by principal")
			var event audit.Event
			s.Require().NoError(json.Unmarshal(record.Value, &event))
			got = append(got, event)
		})
	}

	s.Equal(events[0].ID, got[0].ID)
	s.Equal(audit.ActionProjectFunded, got[0].Action)
	s.Equal(events[1].ID, got[1].ID, "same-key events preserve order")
	s.Equal(audit.ActionGoalReached, got[1].Action)
}
