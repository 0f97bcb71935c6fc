package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID int, caller models.Caller) ([]models.Match, error)
}

type BracketGeneratedPayload struct {
	TournamentID int            `json:"tournament_id"`
	TeamCount    int            `json:"team_count"`
	Matches      []models.Match `json:"matches"`
}

type bracketService struct {
	tx            repositories.Transactor
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	matches       repositories.MatchRepository
	generator     brackets.BracketGenerator
	events        events.Publisher
	logger        *slog.Logger
}

func NewBracketService(
	tx repositories.Transactor,
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	matches repositories.MatchRepository,
	generator brackets.BracketGenerator,
	publisher events.Publisher,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:            tx,
		tournaments:   tournaments,
		registrations: registrations,
		matches:       matches,
		generator:     generator,
		events:        publisher,
		logger:        logger,
	}
}

// GenerateBracket строит первый раунд single elimination. Все матчи и перевод турнира
// в ongoing фиксируются одной транзакцией.
func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int, caller models.Caller) ([]models.Match, error) {
	if err := validateIDs(tournamentID); err != nil {
		return nil, err
	}
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	var created []models.Match
	var teamCount int
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		tournament, err := s.tournaments.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		if tournament.Format != models.FormatSingleElimination {
			return ErrUnsupportedFormat
		}
		if tournament.Status != models.StatusUpcoming {
			return ErrTournamentNotUpcoming
		}

		registered := models.RegistrationRegistered
		regs, err := s.registrations.ListByTournament(ctx, exec, tournamentID, &registered)
		if err != nil {
			return err
		}
		teamCount = len(regs)
		if teamCount < 2 {
			return ErrNotEnoughTeams
		}

		teamIDs := make([]int, 0, teamCount)
		for _, r := range regs {
			teamIDs = append(teamIDs, r.TeamID)
		}

		pairings, err := s.generator.GenerateFirstRound(ctx, teamIDs)
		if err != nil {
			if errors.Is(err, brackets.ErrNotEnoughTeams) {
				return ErrNotEnoughTeams
			}
			return fmt.Errorf("failed to generate bracket for tournament %d: %w", tournamentID, err)
		}

		created = make([]models.Match, 0, len(pairings))
		for _, p := range pairings {
			m := models.Match{
				TournamentID: tournamentID,
				Round:        1,
				TeamAID:      p.TeamAID,
				TeamBID:      p.TeamBID,
				ScheduledAt:  tournament.StartDate,
				Format:       p.Format,
			}
			if p.IsBye() {
				// bye: команда A проходит автоматически, статистика не начисляется
				res := models.ResultTeamA
				m.Result = &res
			}
			if err := s.matches.Create(ctx, exec, &m); err != nil {
				return fmt.Errorf("failed to create match %d of bracket: %w", p.Order, err)
			}
			created = append(created, m)
		}

		if err := s.tournaments.UpdateStatus(ctx, exec, tournamentID, models.StatusOngoing); err != nil {
			return translateRepoError(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("bracket generation failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("teams", teamCount),
		slog.Int("matches", len(created)),
		slog.String("generator", s.generator.GetName()),
	)
	s.events.Publish(ctx, events.New(events.BracketGenerated, tournamentID, BracketGeneratedPayload{
		TournamentID: tournamentID,
		TeamCount:    teamCount,
		Matches:      created,
	}))
	return created, nil
}
