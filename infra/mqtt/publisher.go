package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremon "github.com/kilianp07/sectionsched/core/monitoring"
	"github.com/kilianp07/sectionsched/core/scheduler"
	"github.com/kilianp07/sectionsched/infra/logger"
	"github.com/kilianp07/sectionsched/pkg/export"
)

// pahoClient is the subset of paho.Client the publisher needs.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends output record sets to the configured topic.
type Publisher struct {
	cli     pahoClient
	cfg     Config
	log     logger.Logger
	monitor coremon.Monitor
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithLogger sets the publisher logger.
func WithLogger(l logger.Logger) Option { return func(p *Publisher) { p.log = l } }

// WithMonitor reports publish failures to m.
func WithMonitor(m coremon.Monitor) Option { return func(p *Publisher) { p.monitor = m } }

// NewPublisher connects to the broker.
func NewPublisher(cfg Config, opts ...Option) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	copts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	p := &Publisher{cfg: cfg, log: logger.New("mqtt_publisher"), monitor: coremon.NopMonitor{}}
	for _, o := range opts {
		o(p)
	}
	copts.OnConnectionLost = func(_ paho.Client, err error) {
		p.log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(copts)
	token := c.Connect()
	if !token.WaitTimeout(cfg.timeout()) {
		return nil, fmt.Errorf("connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}
	p.log.Infof("MQTT connected to %s", cfg.Broker)
	p.cli = c
	return p, nil
}

// PublishSchedule publishes the output record set of a successful run.
func (p *Publisher) PublishSchedule(ctx context.Context, res scheduler.Result) error {
	payload, err := export.MarshalJSON(res)
	if err != nil {
		return err
	}
	if err := p.Publish(ctx, payload); err != nil {
		p.monitor.CaptureException(err, coremon.RunTags("mqtt", res.RunID, "topic", p.cfg.Topic))
		return err
	}
	p.log.Infof("published run %s to %s (%d bytes)", res.RunID, p.cfg.Topic, len(payload))
	return nil
}

// Publish sends payload to the configured topic, retrying with exponential
// backoff until MaxRetries is exhausted or ctx ends.
func (p *Publisher) Publish(ctx context.Context, payload []byte) error {
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		publishErr = p.publishOnce(ctx, payload)
		if publishErr == nil {
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == p.cfg.MaxRetries {
			break
		}
		backoff := time.Duration(p.cfg.BackoffMS) * time.Millisecond * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("publish to %s: %w", p.cfg.Topic, publishErr)
}

func (p *Publisher) publishOnce(ctx context.Context, payload []byte) error {
	token := p.cli.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retain, payload)
	timer := time.NewTimer(p.cfg.timeout())
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish timed out after %s", p.cfg.timeout())
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
