package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSendsPayload(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"id":"evt-1"}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})
	p := NewProducerFrom(sp)

	err := p.Publish(context.Background(), "tb.calendar.events.v1", "ann-1", []byte(`{"id":"evt-1"}`), map[string]string{"content-type": "application/cloudevents+json"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishReturnsBrokerError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)
	p := NewProducerFrom(sp)

	err := p.Publish(context.Background(), "topic", "key", []byte("{}"), nil)
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	require.NoError(t, p.Close())
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := NewProducerFrom(sp)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, "topic", "key", []byte("{}"), nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, p.Close())
}

func TestNewConfigIsValidIdempotent(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Producer.Idempotent)
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
}

func TestRecordHeadersSorted(t *testing.T) {
	hs := recordHeaders(map[string]string{"traceparent": "t", "content-type": "c", "request_id": "r"})
	require.Len(t, hs, 3)
	assert.Equal(t, "content-type", string(hs[0].Key))
	assert.Equal(t, "request_id", string(hs[1].Key))
	assert.Equal(t, "traceparent", string(hs[2].Key))
	assert.Nil(t, recordHeaders(nil))
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil, nil)
	assert.Error(t, err)
}
