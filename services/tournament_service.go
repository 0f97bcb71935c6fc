package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/storage"
	"golang.org/x/sync/errgroup"
)

var ErrArchiveUnavailable = newError(ErrInvalidState, "archive storage is not configured")

type CreateTournamentInput struct {
	Name       string                  `json:"name" validate:"required,min=3,max=100"`
	DivisionID int                     `json:"division_id" validate:"required,gt=0"`
	Format     models.TournamentFormat `json:"format" validate:"omitempty,oneof=single_elim"`
	StartDate  time.Time               `json:"start_date" validate:"required"`
	EndDate    *time.Time              `json:"end_date,omitempty"`
	MaxTeams   *int                    `json:"max_teams,omitempty" validate:"omitempty,gt=0"`
}

type ListTournamentsFilter struct {
	DivisionID *int
	Status     *models.TournamentStatus
	Limit      int
	Offset     int
}

type ArchiveResult struct {
	Key        string    `json:"key"`
	URL        string    `json:"url,omitempty"`
	ETag       string    `json:"etag,omitempty"`
	ArchivedAt time.Time `json:"archived_at"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, caller models.Caller, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateTournamentStatus(ctx context.Context, id int, caller models.Caller, status models.TournamentStatus) (*models.Tournament, error)
	GetTournamentOverview(ctx context.Context, id int) (*models.TournamentOverview, error)
	ArchiveTournament(ctx context.Context, id int, caller models.Caller) (*ArchiveResult, error)
}

type tournamentService struct {
	tx            repositories.Transactor
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	matches       repositories.MatchRepository
	standings     StandingsService
	uploader      storage.ObjectUploader
	events        events.Publisher
	logger        *slog.Logger
	now           func() time.Time
}

func NewTournamentService(
	tx repositories.Transactor,
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	matches repositories.MatchRepository,
	standings StandingsService,
	uploader storage.ObjectUploader,
	publisher events.Publisher,
	logger *slog.Logger,
) TournamentService {
	if uploader == nil {
		uploader = storage.Disabled{}
	}
	return &tournamentService{
		tx:            tx,
		tournaments:   tournaments,
		registrations: registrations,
		matches:       matches,
		standings:     standings,
		uploader:      uploader,
		events:        publisher,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, caller models.Caller, input CreateTournamentInput) (*models.Tournament, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.DivisionID <= 0 || input.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: division_id and start_date are required", ErrValidationFailed)
	}
	if input.EndDate != nil && !input.EndDate.After(input.StartDate) {
		return nil, ErrTournamentInvalidDates
	}
	if input.MaxTeams != nil && *input.MaxTeams <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}
	format := input.Format
	if format == "" {
		format = models.FormatSingleElimination
	}
	if format != models.FormatSingleElimination {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrValidationFailed, format)
	}

	t := &models.Tournament{
		Name:       name,
		DivisionID: input.DivisionID,
		Format:     format,
		Status:     models.StatusUpcoming,
		StartDate:  input.StartDate.UTC(),
		EndDate:    input.EndDate,
		MaxTeams:   input.MaxTeams,
	}
	if err := s.tournaments.Create(ctx, nil, t); err != nil {
		return nil, err
	}

	s.logger.Info("tournament created", slog.Int("tournament_id", t.ID), slog.Int("admin_id", caller.UserID))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	if err := validateIDs(id); err != nil {
		return nil, err
	}
	t, err := s.tournaments.GetByID(ctx, nil, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.tournaments.List(ctx, nil, repositories.ListTournamentsFilter{
		DivisionID: filter.DivisionID,
		Status:     filter.Status,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// UpdateTournamentStatus двигает статус только вперёд. upcoming→ongoing делает генерация сетки.
func (s *tournamentService) UpdateTournamentStatus(ctx context.Context, id int, caller models.Caller, status models.TournamentStatus) (*models.Tournament, error) {
	if err := validateIDs(id); err != nil {
		return nil, err
	}
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	switch status {
	case models.StatusUpcoming, models.StatusOngoing, models.StatusCompleted:
	default:
		return nil, fmt.Errorf("%w: unknown tournament status %q", ErrValidationFailed, status)
	}

	var t *models.Tournament
	var previous models.TournamentStatus
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		var err error
		t, err = s.tournaments.GetForUpdate(ctx, exec, id)
		if err != nil {
			return translateRepoError(err)
		}
		previous = t.Status
		if t.Status == status {
			return nil
		}
		if !isValidStatusTransition(t.Status, status) || status == models.StatusOngoing {
			return ErrInvalidStatusTransition
		}
		if err := s.tournaments.UpdateStatus(ctx, exec, id, status); err != nil {
			return translateRepoError(err)
		}
		t.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != status {
		s.logger.Info("tournament status changed",
			slog.Int("tournament_id", id),
			slog.String("from", string(previous)),
			slog.String("to", string(status)),
		)
		s.events.Publish(ctx, events.New(events.TournamentStatus, id, t))
	}
	return t, nil
}

// GetTournamentOverview загружает связанные данные турнира параллельно.
func (s *tournamentService) GetTournamentOverview(ctx context.Context, id int) (*models.TournamentOverview, error) {
	if err := validateIDs(id); err != nil {
		return nil, err
	}

	overview := &models.TournamentOverview{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.tournaments.GetByID(gCtx, nil, id)
		if err != nil {
			return translateRepoError(err)
		}
		overview.Tournament = t
		return nil
	})
	g.Go(func() error {
		regs, err := s.registrations.ListByTournament(gCtx, nil, id, nil)
		if err != nil {
			return fmt.Errorf("failed to load registrations for tournament %d: %w", id, err)
		}
		overview.Registrations = regs
		return nil
	})
	g.Go(func() error {
		matches, err := s.matches.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to load matches for tournament %d: %w", id, err)
		}
		overview.Matches = matches
		return nil
	})
	g.Go(func() error {
		board, err := s.standings.TournamentLeaderboard(gCtx, id)
		if err != nil {
			return err
		}
		overview.Leaderboard = board
		return nil
	})

	if err := g.Wait(); err != nil {
		// NotFound турнира важнее ошибок соседних загрузок
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return overview, nil
}

// ArchiveTournament выгружает JSON-снимок завершённого турнира в объектное хранилище.
func (s *tournamentService) ArchiveTournament(ctx context.Context, id int, caller models.Caller) (*ArchiveResult, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	overview, err := s.GetTournamentOverview(ctx, id)
	if err != nil {
		return nil, err
	}
	if overview.Tournament.Status != models.StatusCompleted {
		return nil, ErrTournamentNotCompleted
	}

	archivedAt := s.now().UTC()
	body, err := json.Marshal(struct {
		*models.TournamentOverview
		ArchivedAt time.Time `json:"archived_at"`
	}{overview, archivedAt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode archive for tournament %d: %w", id, err)
	}

	key := fmt.Sprintf("archives/tournaments/%d/%s.json", id, archivedAt.Format("20060102T150405Z"))
	res, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			return nil, ErrArchiveUnavailable
		}
		return nil, err
	}

	s.logger.Info("tournament archived", slog.Int("tournament_id", id), slog.String("key", res.Key))
	return &ArchiveResult{Key: res.Key, URL: res.Location, ETag: res.ETag, ArchivedAt: archivedAt}, nil
}
