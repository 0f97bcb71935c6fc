package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrRegistrationNotFound      = errors.New("registration not found")
	ErrRegistrationConflict      = errors.New("registration conflict: team already has an active registration for this tournament")
	ErrRegistrationTeamInvalid   = errors.New("registration team invalid")
	ErrRegistrationTournamentBad = errors.New("registration tournament invalid")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	// FindActive возвращает незакрытую (registered/waitlisted) запись команды в турнире.
	FindActive(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) (*models.Registration, error)
	CountByStatus(ctx context.Context, exec SQLExecutor, tournamentID int, status models.RegistrationStatus) (int, error)
	// OldestWaitlisted returns the waitlisted row with the smallest id.
	OldestWaitlisted(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Registration, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]models.Registration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `id, tournament_id, team_id, status, created_at, updated_at`

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (tournament_id, team_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, reg.TournamentID, reg.TeamID, reg.Status).
		Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		switch code, constraint := pqCode(err); code {
		case pqUniqueViolation:
			if constraint == "registrations_active_team_uniq" {
				return ErrRegistrationConflict
			}
		case pqForeignKeyViolation:
			switch constraint {
			case "registrations_team_id_fkey":
				return ErrRegistrationTeamInvalid
			case "registrations_tournament_id_fkey":
				return ErrRegistrationTournamentBad
			}
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) FindActive(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) (*models.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE tournament_id = $1 AND team_id = $2 AND status <> $3`
	return scanRegistration(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, teamID, models.RegistrationWithdrawn))
}

func (r *postgresRegistrationRepository) CountByStatus(ctx context.Context, exec SQLExecutor, tournamentID int, status models.RegistrationStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM registrations WHERE tournament_id = $1 AND status = $2`
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) OldestWaitlisted(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE tournament_id = $1 AND status = $2
		ORDER BY id ASC
		LIMIT 1
		FOR UPDATE`
	return scanRegistration(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, models.RegistrationWaitlisted))
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error {
	query := `UPDATE registrations SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if statusFilter != nil {
		query += ` AND status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		reg, scanErr := scanRegistration(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		regs = append(regs, *reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}
