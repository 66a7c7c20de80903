// Package events publishes build-completed notifications to NATS.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"blogbuilder/internal/render"
)

// BuildEvent is the wire form of a completed build notification.
type BuildEvent struct {
	BuildID   string    `json:"build_id"`
	Outcome   string    `json:"outcome"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Published int       `json:"published"`
	Drafts    int       `json:"drafts"`
	Pages     int       `json:"pages"`
	Warnings  int       `json:"warnings"`
}

// Publisher emits build events. Implementations must tolerate being
// called from the build loop and never block a rebuild.
type Publisher interface {
	PublishBuild(report *render.BuildReport) error
	Close() error
}

// NoopPublisher drops all events. Used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBuild(*render.BuildReport) error { return nil }
func (NoopPublisher) Close() error                           { return nil }

// NATSPublisher publishes build events on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS %s: %w", url, err)
	}

	slog.Info("Build event publisher connected", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

func (p *NATSPublisher) PublishBuild(report *render.BuildReport) error {
	evt := BuildEvent{
		BuildID:   report.BuildID,
		Outcome:   string(report.Outcome),
		Started:   report.Start,
		Finished:  report.End,
		Published: report.Published,
		Drafts:    report.Drafts,
		Pages:     report.Pages,
		Warnings:  len(report.Warnings),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}
	slog.Debug("Published build event", "build_id", evt.BuildID, "outcome", evt.Outcome)
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
