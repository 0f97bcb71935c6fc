package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTeamStatsNotFound  = errors.New("team stats not found")
	ErrTeamStatsUnderflow = errors.New("team stats would become negative")
)

const pqCheckViolation = "23514"

type StandingsRepository interface {
	// EnsureRow создаёт нулевую строку статистики, если её ещё нет.
	EnsureRow(ctx context.Context, exec SQLExecutor, teamID int) error
	ApplyDelta(ctx context.Context, exec SQLExecutor, teamID int, delta models.StatsDelta) error
	GetByTeam(ctx context.Context, exec SQLExecutor, teamID int) (*models.TeamStats, error)
	ListAll(ctx context.Context, exec SQLExecutor) ([]models.TeamStats, error)
	// Leaderboard returns entries ordered by points, wins, draws desc, team id asc.
	// A nil teamIDs means every team with a stats row.
	Leaderboard(ctx context.Context, exec SQLExecutor, teamIDs []int) ([]models.LeaderboardEntry, error)
}

type postgresStandingsRepository struct {
	db *sql.DB
}

func NewPostgresStandingsRepository(db *sql.DB) StandingsRepository {
	return &postgresStandingsRepository{db: db}
}

func (r *postgresStandingsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingsRepository) EnsureRow(ctx context.Context, exec SQLExecutor, teamID int) error {
	query := `INSERT INTO team_stats (team_id) VALUES ($1) ON CONFLICT (team_id) DO NOTHING`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, teamID); err != nil {
		return fmt.Errorf("failed to ensure stats row for team %d: %w", teamID, err)
	}
	return nil
}

// ApplyDelta меняет счётчики относительно текущих значений, не читая строку заранее.
func (r *postgresStandingsRepository) ApplyDelta(ctx context.Context, exec SQLExecutor, teamID int, d models.StatsDelta) error {
	query := `
		UPDATE team_stats SET
			wins = wins + $1,
			losses = losses + $2,
			draws = draws + $3,
			points = points + $4,
			updated_at = NOW()
		WHERE team_id = $5`
	res, err := r.getExecutor(exec).ExecContext(ctx, query, d.Wins, d.Losses, d.Draws, d.Points, teamID)
	if err != nil {
		if code, _ := pqCode(err); code == pqCheckViolation {
			return ErrTeamStatsUnderflow
		}
		return fmt.Errorf("failed to apply stats delta for team %d: %w", teamID, err)
	}
	return checkAffectedRows(res, ErrTeamStatsNotFound)
}

func (r *postgresStandingsRepository) GetByTeam(ctx context.Context, exec SQLExecutor, teamID int) (*models.TeamStats, error) {
	query := `SELECT team_id, wins, losses, draws, points, updated_at FROM team_stats WHERE team_id = $1`
	var s models.TeamStats
	err := r.getExecutor(exec).QueryRowContext(ctx, query, teamID).
		Scan(&s.TeamID, &s.Wins, &s.Losses, &s.Draws, &s.Points, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamStatsNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresStandingsRepository) ListAll(ctx context.Context, exec SQLExecutor) ([]models.TeamStats, error) {
	query := `SELECT team_id, wins, losses, draws, points, updated_at FROM team_stats ORDER BY team_id`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list team stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.TeamStats, 0)
	for rows.Next() {
		var s models.TeamStats
		if err := rows.Scan(&s.TeamID, &s.Wins, &s.Losses, &s.Draws, &s.Points, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *postgresStandingsRepository) Leaderboard(ctx context.Context, exec SQLExecutor, teamIDs []int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT s.team_id, COALESCE(t.name, ''), s.wins, s.losses, s.draws, s.points
		FROM team_stats s
		LEFT JOIN teams t ON t.id = s.team_id`
	args := []interface{}{}
	if teamIDs != nil {
		query += ` WHERE s.team_id = ANY($1)`
		args = append(args, pq.Array(teamIDs))
	}
	query += ` ORDER BY s.points DESC, s.wins DESC, s.draws DESC, s.team_id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.TeamID, &e.TeamName, &e.Wins, &e.Losses, &e.Draws, &e.Points); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
