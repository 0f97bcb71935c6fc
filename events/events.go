package events

import (
	"context"
	"log/slog"
	"time"
)

// Типы доменных событий.
const (
	RegistrationCreated   = "registration.created"
	RegistrationWithdrawn = "registration.withdrawn"
	RegistrationPromoted  = "registration.promoted"
	BracketGenerated      = "bracket.generated"
	ReportSubmitted       = "report.submitted"
	ReportConfirmed       = "report.confirmed"
	ReportRejected        = "report.rejected"
	ReportFinalized       = "report.finalized"
	MatchResultApplied    = "match.result_applied"
	TournamentStatus      = "tournament.status_changed"
)

type Event struct {
	Type         string      `json:"type"`
	TournamentID int         `json:"tournament_id"`
	Payload      interface{} `json:"payload"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

func New(eventType string, tournamentID int, payload interface{}) Event {
	return Event{Type: eventType, TournamentID: tournamentID, Payload: payload, OccurredAt: time.Now().UTC()}
}

// Publisher: то, что видят сервисы. Публикация идёт после коммита и никогда не валит запрос.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Sink is a single delivery target (websocket hub, broker, cache invalidator).
type Sink interface {
	Deliver(ctx context.Context, event Event) error
}

type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewDispatcher(logger *slog.Logger, sinks ...Sink) *Dispatcher {
	active := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &Dispatcher{sinks: active, logger: logger}
}

func (d *Dispatcher) Publish(ctx context.Context, event Event) {
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, event); err != nil {
			d.logger.Warn("event delivery failed",
				slog.String("event_type", event.Type),
				slog.Int("tournament_id", event.TournamentID),
				slog.Any("error", err),
			)
		}
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
