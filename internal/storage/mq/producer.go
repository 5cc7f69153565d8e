package mq

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/catalog-admin/internal/config"
)

// ProduceMsg is a single record to publish. An empty PartitionKey leaves partitioning
// to the client.
type ProduceMsg struct {
	Topic        string
	Headers      map[string]string
	Payload      []byte
	PartitionKey string
}

type Producer interface {
	Produce(ctx context.Context, msg ProduceMsg) error
	Close()
}

var (
	_ Producer = (*KafkaProducer)(nil)
	_ Producer = NopProducer{}
)

type KafkaProducer struct {
	cl *kgo.Client
}

func NewKafkaProducer(ctx context.Context, cfg config.Kafka) (*KafkaProducer, error) {
	cl, err := newClient(ctx, cfg.Addresses, "",
		kgo.ProducerLinger(0),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, err
	}

	return &KafkaProducer{cl: cl}, nil
}

// NewProducer returns a Kafka producer when brokers are configured and a NopProducer otherwise.
func NewProducer(ctx context.Context, cfg config.Kafka) (Producer, error) {
	if !cfg.Enabled() {
		return NopProducer{}, nil
	}
	return NewKafkaProducer(ctx, cfg)
}

func (p *KafkaProducer) Produce(ctx context.Context, msg ProduceMsg) error {
	ctx, span := tracer.Start(ctx, "KafkaProducer.Produce",
		trace.WithAttributes(
			attribute.String("topic", msg.Topic),
		),
	)
	defer span.End()

	if err := p.cl.ProduceSync(ctx, buildProduceRecord(msg)).FirstErr(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to produce message")
		return fmt.Errorf("produce to %s: %w", msg.Topic, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (p *KafkaProducer) Close() {
	p.cl.Close()
}

// NopProducer drops every message.
type NopProducer struct{}

func (NopProducer) Produce(context.Context, ProduceMsg) error { return nil }

func (NopProducer) Close() {}

func buildProduceRecord(msg ProduceMsg) *kgo.Record {
	headers := make([]kgo.RecordHeader, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kgo.RecordHeader{
			Key:   k,
			Value: []byte(v),
		})
	}

	r := &kgo.Record{
		Topic:   msg.Topic,
		Value:   msg.Payload,
		Headers: headers,
	}

	if msg.PartitionKey != "" {
		r.Key = []byte(msg.PartitionKey)
	}

	return r
}
