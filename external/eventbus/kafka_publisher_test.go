package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/poule-scoring/internal/domain/scoringevent"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
)

func testConfig() KafkaPublisherConfig {
	return KafkaPublisherConfig{
		StandingsTopic: "pool.standings.updated",
		PassTopic:      "scoring.completed",
	}
}

func TestKafkaPublisher_PublishStandings(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewProducerConfig("test"))
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got scoringevent.StandingsUpdated
		if err := sonic.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.PoolID != "p1" || len(got.Standings) != 2 || got.Standings[0].Rank != 1 {
			return errors.New("unexpected standings payload")
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, testConfig(), logging.NewNop())
	err := publisher.PublishStandings(context.Background(), scoringevent.StandingsUpdated{
		RunID:  "run-1",
		PoolID: "p1",
		Standings: []scoringevent.StandingRow{
			{UserID: "u1", Points: 10, Rank: 1},
			{UserID: "u2", Points: 4, Rank: 2},
		},
		CalculatedAt: time.Date(2026, 7, 19, 20, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_PublishPassCompletedFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewProducerConfig("test"))
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherWithProducer(producer, testConfig(), logging.NewNop())
	err := publisher.PublishPassCompleted(context.Background(), scoringevent.PassCompleted{RunID: "run-1", Pass: "matches"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.Contains(t, err.Error(), "topic=scoring.completed")
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_CanceledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewProducerConfig("test"))
	publisher := NewKafkaPublisherWithProducer(producer, testConfig(), logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := publisher.PublishPassCompleted(ctx, scoringevent.PassCompleted{Pass: "groups"})
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, publisher.Close())
}

func TestEncodeEvent_NoTrailingNewline(t *testing.T) {
	body, err := encodeEvent(scoringevent.PassCompleted{Pass: "winner", NoOp: true})
	require.NoError(t, err)
	require.NotEmpty(t, body)
	assert.NotEqual(t, byte('\n'), body[len(body)-1])
	assert.Contains(t, string(body), `"pass":"winner"`)
	assert.Contains(t, string(body), `"noOp":true`)
}

func TestNewProducerConfig(t *testing.T) {
	cfg := NewProducerConfig(" poule-scoring ")
	assert.Equal(t, "poule-scoring", cfg.ClientID)
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.True(t, cfg.Producer.Return.Successes)
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(testConfig(), nil)
	require.Error(t, err)
}
