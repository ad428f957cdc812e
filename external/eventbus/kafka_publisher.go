package eventbus

import (
	"bytes"
	"context"
	"strings"

	"github.com/IBM/sarama"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/poule-scoring/internal/domain/scoringevent"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
)

const (
	headerEventType = "event_type"
	headerRunID     = "run_id"

	eventStandingsUpdated = "pool.standings.updated"
	eventPassCompleted    = "scoring.completed"
)

type KafkaPublisherConfig struct {
	Brokers        []string
	ClientID       string
	StandingsTopic string
	PassTopic      string
}

// KafkaPublisher writes scoring events to Kafka. Standings are keyed by pool
// id so one pool's updates stay ordered within a partition.
type KafkaPublisher struct {
	producer       sarama.SyncProducer
	standingsTopic string
	passTopic      string
	logger         *logging.Logger
}

func NewProducerConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	if clientID = strings.TrimSpace(clientID); clientID != "" {
		cfg.ClientID = clientID
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	return cfg
}

func NewKafkaPublisher(cfg KafkaPublisherConfig, logger *logging.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, crerr.New("kafka brokers are required")
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewProducerConfig(cfg.ClientID))
	if err != nil {
		return nil, crerr.Wrapf(err, "create kafka producer brokers=%s", strings.Join(cfg.Brokers, ","))
	}
	return NewKafkaPublisherWithProducer(producer, cfg, logger), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, cfg KafkaPublisherConfig, logger *logging.Logger) *KafkaPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &KafkaPublisher{
		producer:       producer,
		standingsTopic: cfg.StandingsTopic,
		passTopic:      cfg.PassTopic,
		logger:         logger.Named("kafka"),
	}
}

func (p *KafkaPublisher) PublishStandings(ctx context.Context, event scoringevent.StandingsUpdated) error {
	return p.send(ctx, p.standingsTopic, event.PoolID, eventStandingsUpdated, event.RunID, event)
}

func (p *KafkaPublisher) PublishPassCompleted(ctx context.Context, event scoringevent.PassCompleted) error {
	return p.send(ctx, p.passTopic, event.Pass, eventPassCompleted, event.RunID, event)
}

func (p *KafkaPublisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

func (p *KafkaPublisher) send(ctx context.Context, topic, key, eventType, runID string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := encodeEvent(payload)
	if err != nil {
		return crerr.Wrapf(err, "encode %s event", eventType)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerEventType), Value: []byte(eventType)},
			{Key: []byte(headerRunID), Value: []byte(runID)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return crerr.Wrapf(err, "publish %s to topic=%s key=%s", eventType, topic, key)
	}

	p.logger.DebugContext(ctx, "kafka event published",
		"topic", topic,
		"key", key,
		"event_type", eventType,
		"run_id", runID,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func encodeEvent(payload any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return nil, err
	}
	return bytes.Clone(bytes.TrimRight(buf.B, "\n")), nil
}
