package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "propex/pkg/domain"
	audit "propex/pkg/platform/audit"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestSink_Append(t *testing.T) {
	t.Run("keys by transaction and tags category", func(t *testing.T) {
		producer := &recordingProducer{}
		sink := NewSink(producer, "propex.audit")
		userID := id.NewUserID()

		err := sink.Append(context.Background(), audit.Event{
			Timestamp:     time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
			UserID:        userID,
			TransactionID: "tx-1",
			Action:        string(audit.EventTransactionAdvanced),
		})
		require.NoError(t, err)
		require.Len(t, producer.records, 1)

		rec := producer.records[0]
		assert.Equal(t, "propex.audit", rec.Topic)
		assert.Equal(t, "tx-1", string(rec.Key))
		assert.Equal(t, "financial", string(rec.Headers[0].Value))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Value, &body))
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, "transaction_advanced", body["action"])
	})

	t.Run("falls back to user key", func(t *testing.T) {
		producer := &recordingProducer{}
		userID := id.NewUserID()
		require.NoError(t, NewSink(producer, "t").Append(context.Background(), audit.Event{
			UserID: userID,
			Action: string(audit.EventWalletProvisioned),
		}))
		assert.Equal(t, userID.String(), string(producer.records[0].Key))
	})

	t.Run("surfaces produce errors", func(t *testing.T) {
		producer := &recordingProducer{err: errors.New("not leader")}
		err := NewSink(producer, "t").Append(context.Background(), audit.Event{Action: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "produce audit record")
	})
}
