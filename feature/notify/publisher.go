package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"horror-tracker/feature/orchestrator"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// jetStream is the part of nats.JetStreamContext the publisher uses.
type jetStream interface {
	StreamInfo(stream string, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// RunCompleted is the event published after every run.
type RunCompleted struct {
	RunID      string            `json:"run_id"`
	DryRun     bool              `json:"dry_run"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Failed     bool              `json:"failed"`
	Tasks      map[string]string `json:"tasks"`
}

// NewRunCompleted summarizes a report as an event.
func NewRunCompleted(r *orchestrator.Report) RunCompleted {
	tasks := make(map[string]string, len(r.Tasks))
	for _, t := range r.Tasks {
		tasks[t.Name] = string(t.Status)
	}
	return RunCompleted{
		RunID:      r.RunID,
		DryRun:     r.DryRun,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Failed:     r.Failed(),
		Tasks:      tasks,
	}
}

// Publisher announces finished runs on JetStream. Without a URL it runs in
// stub mode and only logs.
type Publisher struct {
	cfg Config
	log *zap.Logger
	nc  *nats.Conn
	js  jetStream
}

// New connects to NATS and makes sure the stream exists.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Publisher, error) {
	p := &Publisher{cfg: cfg, log: log}
	if cfg.URL == "" {
		log.Info("NATS url not set, run events will only be logged")
		return p, nil
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("horror-tracker"),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to open jetstream: %w", err)
	}
	p.nc, p.js = nc, js

	if err := p.EnsureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	return p, nil
}

// EnsureStream creates the stream when it does not exist yet.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	if p.js == nil {
		return nil
	}
	_, err := p.js.StreamInfo(p.cfg.Stream, nats.Context(ctx))
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream %s: %w", p.cfg.Stream, err)
	}

	_, err = p.js.AddStream(&nats.StreamConfig{
		Name:     p.cfg.Stream,
		Subjects: []string{subjectRoot(p.cfg.Subject) + ".>"},
		Storage:  nats.FileStorage,
		MaxAge:   90 * 24 * time.Hour,
	}, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", p.cfg.Stream, err)
	}
	p.log.Info("Created stream", zap.String("stream", p.cfg.Stream))
	return nil
}

// subjectRoot returns the first token of a subject: horror.runs.completed -> horror.
func subjectRoot(subject string) string {
	root, _, _ := strings.Cut(subject, ".")
	return root
}

// PublishRun publishes one RunCompleted event for the report.
func (p *Publisher) PublishRun(ctx context.Context, report *orchestrator.Report) error {
	event := NewRunCompleted(report)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if p.js == nil {
		p.log.Info("Run completed", zap.String("run_id", event.RunID), zap.Bool("failed", event.Failed))
		return nil
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	ack, err := p.js.Publish(p.cfg.Subject, data, nats.Context(ctx), nats.MsgId(event.RunID))
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", p.cfg.Subject, err)
	}
	p.log.Info("Run event published",
		zap.String("subject", p.cfg.Subject),
		zap.String("stream", ack.Stream),
		zap.Uint64("seq", ack.Sequence),
	)
	return nil
}

// Close drains the connection.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
