package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const pingTimeout = 5 * time.Second

var tracer = otel.Tracer("internal/storage/mq")

// newClient dials the brokers with kotel tracing hooks and fails fast if none answers.
// The group, when set, is also recorded on consumer spans.
func newClient(ctx context.Context, addresses []string, group string, opts ...kgo.Opt) (*kgo.Client, error) {
	tracerOpts := []kotel.TracerOpt{
		kotel.TracerProvider(otel.GetTracerProvider()),
		kotel.TracerPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		)),
	}
	if group != "" {
		tracerOpts = append(tracerOpts, kotel.ConsumerGroup(group))
	}
	hooks := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer(tracerOpts...))).Hooks()

	cl, err := kgo.NewClient(append([]kgo.Opt{
		kgo.SeedBrokers(addresses...),
		kgo.AllowAutoTopicCreation(),
		kgo.WithContext(ctx),
		kgo.WithHooks(hooks...),
	}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := cl.Ping(pingCtx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}

	return cl, nil
}
