package services

import (
	"context"
	"errors"
	"sort"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// translateRepoError переводит ошибки репозиториев в ошибки сервисного слоя.
// Неизвестные ошибки возвращаются как есть и уходят клиенту как 500.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTeamNotFound), errors.Is(err, repositories.ErrRegistrationTeamInvalid):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrRegistrationTournamentBad):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrRegistrationConflict):
		return ErrAlreadyRegistered
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrReportNotFound):
		return ErrReportNotFound
	case errors.Is(err, repositories.ErrReportPendingConflict):
		return ErrPendingReportExists
	}
	return err
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusUpcoming:  {models.StatusOngoing},
		models.StatusOngoing:   {models.StatusCompleted},
		models.StatusCompleted: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func requireAdmin(caller models.Caller) error {
	if !caller.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

// requireCaptainOrAdmin пропускает администратора и текущего капитана команды.
func requireCaptainOrAdmin(ctx context.Context, teams repositories.TeamDirectory, exec repositories.SQLExecutor, caller models.Caller, teamID int) error {
	if caller.IsAdmin() {
		return nil
	}
	ok, err := teams.IsCaptain(ctx, exec, caller.UserID, teamID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCaptainRequired
	}
	return nil
}

func validateScores(scoreA, scoreB int) error {
	if scoreA < 0 || scoreB < 0 {
		return ErrNegativeScore
	}
	return nil
}

func validateIDs(ids ...int) error {
	for _, id := range ids {
		if id <= 0 {
			return ErrInvalidID
		}
	}
	return nil
}

// sortLeaderboard: очки, победы, ничьи по убыванию, затем id команды.
func sortLeaderboard(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Draws != b.Draws {
			return a.Draws > b.Draws
		}
		return a.TeamID < b.TeamID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
