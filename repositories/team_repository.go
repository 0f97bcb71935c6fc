package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrTeamNotFound = errors.New("team not found")
)

// TeamDirectory: чтение внешнего каталога команд: бан, дивизион, капитанство.
type TeamDirectory interface {
	GetByID(ctx context.Context, exec SQLExecutor, teamID int) (*models.Team, error)
	IsCaptain(ctx context.Context, exec SQLExecutor, userID, teamID int) (bool, error)
}

type postgresTeamDirectory struct {
	db *sql.DB
}

func NewPostgresTeamDirectory(db *sql.DB) TeamDirectory {
	return &postgresTeamDirectory{db: db}
}

func (r *postgresTeamDirectory) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamDirectory) GetByID(ctx context.Context, exec SQLExecutor, teamID int) (*models.Team, error) {
	query := `SELECT id, name, division_id, banned FROM teams WHERE id = $1`
	var t models.Team
	err := r.getExecutor(exec).QueryRowContext(ctx, query, teamID).Scan(&t.ID, &t.Name, &t.DivisionID, &t.Banned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return &t, nil
}

func (r *postgresTeamDirectory) IsCaptain(ctx context.Context, exec SQLExecutor, userID, teamID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM team_memberships
			WHERE team_id = $1 AND user_id = $2 AND role = 'captain' AND left_at IS NULL
		)`
	var ok bool
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, teamID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check captaincy of user %d for team %d: %w", userID, teamID, err)
	}
	return ok, nil
}
