package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type RegistrationService interface {
	Register(ctx context.Context, tournamentID, teamID int, caller models.Caller) (*models.Registration, error)
	Withdraw(ctx context.Context, tournamentID, teamID int, caller models.Caller) error
	ListRegistrations(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]models.Registration, error)
}

type registrationService struct {
	tx            repositories.Transactor
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	teams         repositories.TeamDirectory
	events        events.Publisher
	logger        *slog.Logger
	now           func() time.Time
}

func NewRegistrationService(
	tx repositories.Transactor,
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	teams repositories.TeamDirectory,
	publisher events.Publisher,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		tx:            tx,
		tournaments:   tournaments,
		registrations: registrations,
		teams:         teams,
		events:        publisher,
		logger:        logger,
		now:           time.Now,
	}
}

// Register создаёт registered-запись, если есть место, иначе waitlisted.
// Подсчёт и вставка идут в одной транзакции под блокировкой строки турнира.
func (s *registrationService) Register(ctx context.Context, tournamentID, teamID int, caller models.Caller) (*models.Registration, error) {
	if err := validateIDs(tournamentID, teamID); err != nil {
		return nil, err
	}

	var reg *models.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		tournament, err := s.tournaments.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		team, err := s.teams.GetByID(ctx, exec, teamID)
		if err != nil {
			return translateRepoError(err)
		}
		if err := requireCaptainOrAdmin(ctx, s.teams, exec, caller, teamID); err != nil {
			return err
		}

		if team.Banned {
			return ErrTeamBanned
		}
		if team.DivisionID != tournament.DivisionID {
			return ErrDivisionMismatch
		}
		if tournament.Status != models.StatusUpcoming {
			return ErrTournamentNotUpcoming
		}
		if !s.now().Before(tournament.RegistrationDeadline()) {
			return ErrRegistrationClosed
		}

		if _, err := s.registrations.FindActive(ctx, exec, tournamentID, teamID); err == nil {
			return ErrAlreadyRegistered
		} else if !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return err
		}

		registered, err := s.registrations.CountByStatus(ctx, exec, tournamentID, models.RegistrationRegistered)
		if err != nil {
			return err
		}
		status := models.RegistrationWaitlisted
		if tournament.HasCapacityFor(registered) {
			status = models.RegistrationRegistered
		}

		reg = &models.Registration{TournamentID: tournamentID, TeamID: teamID, Status: status}
		return translateRepoError(s.registrations.Create(ctx, exec, reg))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("team registered",
		slog.Int("tournament_id", tournamentID),
		slog.Int("team_id", teamID),
		slog.String("status", string(reg.Status)),
	)
	s.events.Publish(ctx, events.New(events.RegistrationCreated, tournamentID, reg))
	return reg, nil
}

// Withdraw помечает запись withdrawn. Если место освободилось, в той же транзакции
// поднимается самая старая waitlisted-запись.
func (s *registrationService) Withdraw(ctx context.Context, tournamentID, teamID int, caller models.Caller) error {
	if err := validateIDs(tournamentID, teamID); err != nil {
		return err
	}

	var withdrawn, promoted *models.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		tournament, err := s.tournaments.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		if err := requireCaptainOrAdmin(ctx, s.teams, exec, caller, teamID); err != nil {
			return err
		}

		reg, err := s.registrations.FindActive(ctx, exec, tournamentID, teamID)
		if err != nil {
			return translateRepoError(err)
		}
		if tournament.Status != models.StatusUpcoming {
			return ErrTournamentNotUpcoming
		}

		if err := s.registrations.UpdateStatus(ctx, exec, reg.ID, models.RegistrationWithdrawn); err != nil {
			return translateRepoError(err)
		}
		withdrawn = reg
		wasRegistered := reg.Status == models.RegistrationRegistered
		withdrawn.Status = models.RegistrationWithdrawn

		if !wasRegistered {
			return nil
		}

		next, err := s.registrations.OldestWaitlisted(ctx, exec, tournamentID)
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.registrations.UpdateStatus(ctx, exec, next.ID, models.RegistrationRegistered); err != nil {
			return translateRepoError(err)
		}
		next.Status = models.RegistrationRegistered
		promoted = next
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("team withdrawn", slog.Int("tournament_id", tournamentID), slog.Int("team_id", teamID))
	s.events.Publish(ctx, events.New(events.RegistrationWithdrawn, tournamentID, withdrawn))
	if promoted != nil {
		s.logger.Info("waitlisted team promoted",
			slog.Int("tournament_id", tournamentID),
			slog.Int("team_id", promoted.TeamID),
			slog.Int("registration_id", promoted.ID),
		)
		s.events.Publish(ctx, events.New(events.RegistrationPromoted, tournamentID, promoted))
	}
	return nil
}

func (s *registrationService) ListRegistrations(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]models.Registration, error) {
	if err := validateIDs(tournamentID); err != nil {
		return nil, err
	}
	if _, err := s.tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}
	regs, err := s.registrations.ListByTournament(ctx, nil, tournamentID, status)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return regs, nil
}
