//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	id "propex/pkg/domain"
	audit "propex/pkg/platform/audit"
	"propex/pkg/platform/audit/kafka"
	"propex/pkg/testutil/containers"
)

type SinkSuite struct {
	suite.Suite
	broker *containers.RedpandaContainer
}

func TestSinkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SinkSuite))
}

func (s *SinkSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T())
}

func (s *SinkSuite) TestAppendIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	topic := "propex.audit." + id.NewUserID().String()

	producer, err := kafka.Dial(ctx, s.broker.Brokers, topic)
	s.Require().NoError(err)
	defer producer.Close()

	userID := id.NewUserID()
	sink := kafka.NewSink(producer, topic)
	s.Require().NoError(sink.Append(ctx, audit.Event{
		Timestamp:     time.Now(),
		UserID:        userID,
		TransactionID: "tx-42",
		Action:        string(audit.EventStepCompleted),
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal("tx-42", string(records[0].Key))

	var body map[string]any
	s.Require().NoError(json.Unmarshal(records[0].Value, &body))
	s.Equal("step_completed", body["action"])
	s.Equal(userID.String(), body["user_id"])
}

func (s *SinkSuite) TestDialIsIdempotentOnTopic() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	topic := "propex.audit.shared"

	first, err := kafka.Dial(ctx, s.broker.Brokers, topic)
	s.Require().NoError(err)
	first.Close()

	second, err := kafka.Dial(ctx, s.broker.Brokers, topic)
	s.Require().NoError(err)
	second.Close()
}
