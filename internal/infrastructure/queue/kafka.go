package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/ports"
)

const (
	defaultMailTopic      = "bookly.mail"
	defaultPublishTimeout = 3 * time.Second
)

// KafkaConfig captures the broker settings of the mail topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	// PublishTimeout bounds a single Enqueue. Zero means defaultPublishTimeout.
	PublishTimeout time.Duration
}

func (c KafkaConfig) topic() string {
	if c.Topic == "" {
		return defaultMailTopic
	}
	return c.Topic
}

// messageWriter is the part of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader is the part of *kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaEnvelope is the wire format of a queued message.
type kafkaEnvelope struct {
	To         []string  `json:"to"`
	Subject    string    `json:"subject"`
	HTML       string    `json:"html"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// KafkaQueue implements ports.MailQueue by publishing to a Kafka topic.
// Messages are keyed by the first recipient so one address maps to one partition.
type KafkaQueue struct {
	writer  messageWriter
	timeout time.Duration
}

func NewKafkaQueue(cfg KafkaConfig) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.topic(),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           timeout,
		MaxAttempts:            3,
	}
	return &KafkaQueue{writer: w, timeout: timeout}, nil
}

func (q *KafkaQueue) Enqueue(ctx context.Context, msg domain.Message) error {
	if len(msg.To) == 0 {
		return errors.New("mail queue: message has no recipients")
	}
	value, err := json.Marshal(kafkaEnvelope{
		To:         msg.To,
		Subject:    msg.Subject,
		HTML:       msg.HTML,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("kafka encode: %w", err)
	}

	timeout := q.timeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strings.ToLower(msg.To[0])),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (q *KafkaQueue) Close() error {
	return q.writer.Close()
}

// KafkaConsumer reads the mail topic and delivers each message. Offsets are
// committed after the delivery outcome is final, success or abandoned.
type KafkaConsumer struct {
	reader messageReader
	mailer ports.Mailer
	policy RetryPolicy
	log    zerolog.Logger
}

func NewKafkaConsumer(cfg KafkaConfig, mailer ports.Mailer, policy RetryPolicy, log zerolog.Logger) (*KafkaConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "bookly-mailer"
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  groupID,
		Topic:    cfg.topic(),
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	return &KafkaConsumer{reader: r, mailer: mailer, policy: policy.withDefaults(), log: log}, nil
}

// Run consumes until ctx is cancelled.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}

		var env kafkaEnvelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			c.log.Error().Err(err).Int64("offset", m.Offset).Msg("discarding malformed mail message")
		} else {
			_ = deliver(ctx, c.mailer, c.policy, domain.Message{To: env.To, Subject: env.Subject, HTML: env.HTML}, c.log)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka commit: %w", err)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
