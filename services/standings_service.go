package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/tournament-engine/cache"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// StandingsLedger: единственный путь изменения TeamStats.
// Перед любым изменением строка статистики создаётся с нулями.
type StandingsLedger interface {
	Increment(ctx context.Context, exec repositories.SQLExecutor, teamID int, outcome models.Outcome) error
	Decrement(ctx context.Context, exec repositories.SQLExecutor, teamID int, outcome models.Outcome) error
}

type StandingsService interface {
	StandingsLedger
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
	TournamentLeaderboard(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error)
	// Audit compares each team's wins+losses+draws against decided non-bye matches.
	Audit(ctx context.Context, caller models.Caller) ([]models.StandingsDiscrepancy, error)
}

type standingsService struct {
	standings     repositories.StandingsRepository
	matches       repositories.MatchRepository
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	cache         cache.LeaderboardCache
	logger        *slog.Logger
}

func NewStandingsService(
	standings repositories.StandingsRepository,
	matches repositories.MatchRepository,
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	leaderboardCache cache.LeaderboardCache,
	logger *slog.Logger,
) StandingsService {
	if leaderboardCache == nil {
		leaderboardCache = cache.Noop{}
	}
	return &standingsService{
		standings:     standings,
		matches:       matches,
		tournaments:   tournaments,
		registrations: registrations,
		cache:         leaderboardCache,
		logger:        logger,
	}
}

func (s *standingsService) Increment(ctx context.Context, exec repositories.SQLExecutor, teamID int, outcome models.Outcome) error {
	return s.apply(ctx, exec, teamID, models.DeltaFor(outcome, 1))
}

func (s *standingsService) Decrement(ctx context.Context, exec repositories.SQLExecutor, teamID int, outcome models.Outcome) error {
	return s.apply(ctx, exec, teamID, models.DeltaFor(outcome, -1))
}

func (s *standingsService) apply(ctx context.Context, exec repositories.SQLExecutor, teamID int, delta models.StatsDelta) error {
	if err := s.standings.EnsureRow(ctx, exec, teamID); err != nil {
		return err
	}
	if err := s.standings.ApplyDelta(ctx, exec, teamID, delta); err != nil {
		return fmt.Errorf("failed to apply stats delta %+v to team %d: %w", delta, teamID, err)
	}
	return nil
}

func (s *standingsService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	// поколение читается до запроса к БД: если результат применят между чтением
	// и записью, Set уйдёт в устаревшее поколение и не будет прочитан
	entries, generation, ok := s.cache.Get(ctx)
	if ok {
		return entries, nil
	}

	entries, err := s.standings.Leaderboard(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	sortLeaderboard(entries)
	s.cache.Set(ctx, generation, entries)
	return entries, nil
}

// TournamentLeaderboard ранжирует зарегистрированные команды турнира.
// Команды без строки статистики показываются с нулями.
func (s *standingsService) TournamentLeaderboard(ctx context.Context, tournamentID int) ([]models.LeaderboardEntry, error) {
	if err := validateIDs(tournamentID); err != nil {
		return nil, err
	}
	if _, err := s.tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}

	registered := models.RegistrationRegistered
	regs, err := s.registrations.ListByTournament(ctx, nil, tournamentID, &registered)
	if err != nil {
		return nil, err
	}
	teamIDs := make([]int, 0, len(regs))
	for _, r := range regs {
		teamIDs = append(teamIDs, r.TeamID)
	}
	if len(teamIDs) == 0 {
		return []models.LeaderboardEntry{}, nil
	}

	entries, err := s.standings.Leaderboard(ctx, nil, teamIDs)
	if err != nil {
		return nil, err
	}
	present := make(map[int]bool, len(entries))
	for _, e := range entries {
		present[e.TeamID] = true
	}
	for _, id := range teamIDs {
		if !present[id] {
			entries = append(entries, models.LeaderboardEntry{TeamID: id})
		}
	}
	sortLeaderboard(entries)
	return entries, nil
}

func (s *standingsService) Audit(ctx context.Context, caller models.Caller) ([]models.StandingsDiscrepancy, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	expected, err := s.matches.CountDecidedByTeam(ctx, nil)
	if err != nil {
		return nil, err
	}
	stats, err := s.standings.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}

	discrepancies := make([]models.StandingsDiscrepancy, 0)
	seen := make(map[int]bool, len(stats))
	for _, st := range stats {
		seen[st.TeamID] = true
		if st.Played() != expected[st.TeamID] {
			discrepancies = append(discrepancies, models.StandingsDiscrepancy{
				TeamID: st.TeamID, Recorded: st.Played(), Expected: expected[st.TeamID],
			})
		}
	}
	for teamID, count := range expected {
		if !seen[teamID] && count > 0 {
			discrepancies = append(discrepancies, models.StandingsDiscrepancy{TeamID: teamID, Recorded: 0, Expected: count})
		}
	}

	sort.Slice(discrepancies, func(i, j int) bool { return discrepancies[i].TeamID < discrepancies[j].TeamID })

	if len(discrepancies) > 0 {
		s.logger.Error("standings audit found discrepancies", slog.Int("count", len(discrepancies)))
	}
	return discrepancies, nil
}
