package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrReportNotFound        = errors.New("match report not found")
	ErrReportPendingConflict = errors.New("match already has a pending report")
)

type MatchReportRepository interface {
	Create(ctx context.Context, exec SQLExecutor, report *models.MatchReport) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.MatchReport, error)
	FindPendingByMatch(ctx context.Context, exec SQLExecutor, matchID int) (*models.MatchReport, error)
	// Resolve сохраняет новый статус отчёта вместе с reviewed_by/finalized_by/resolved_at.
	Resolve(ctx context.Context, exec SQLExecutor, report *models.MatchReport) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.MatchReport, error)
}

type postgresMatchReportRepository struct {
	db *sql.DB
}

func NewPostgresMatchReportRepository(db *sql.DB) MatchReportRepository {
	return &postgresMatchReportRepository{db: db}
}

func (r *postgresMatchReportRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const reportColumns = `id, match_id, reporter_id, score_a, score_b, status, reviewed_by, finalized_by, created_at, resolved_at`

func scanReport(row rowScanner) (*models.MatchReport, error) {
	var rep models.MatchReport
	err := row.Scan(
		&rep.ID, &rep.MatchID, &rep.ReporterID, &rep.ScoreA, &rep.ScoreB, &rep.Status,
		&rep.ReviewedBy, &rep.FinalizedBy, &rep.CreatedAt, &rep.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &rep, nil
}

func (r *postgresMatchReportRepository) Create(ctx context.Context, exec SQLExecutor, rep *models.MatchReport) error {
	query := `
		INSERT INTO match_reports (match_id, reporter_id, score_a, score_b, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		rep.MatchID, rep.ReporterID, rep.ScoreA, rep.ScoreB, rep.Status,
	).Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		if code, constraint := pqCode(err); code == pqUniqueViolation && constraint == "match_reports_pending_uniq" {
			return ErrReportPendingConflict
		}
		return fmt.Errorf("failed to create match report: %w", err)
	}
	return nil
}

func (r *postgresMatchReportRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.MatchReport, error) {
	query := `SELECT ` + reportColumns + ` FROM match_reports WHERE id = $1`
	return scanReport(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchReportRepository) FindPendingByMatch(ctx context.Context, exec SQLExecutor, matchID int) (*models.MatchReport, error) {
	query := `SELECT ` + reportColumns + ` FROM match_reports WHERE match_id = $1 AND status = $2`
	return scanReport(r.getExecutor(exec).QueryRowContext(ctx, query, matchID, models.ReportPending))
}

func (r *postgresMatchReportRepository) Resolve(ctx context.Context, exec SQLExecutor, rep *models.MatchReport) error {
	query := `
		UPDATE match_reports
		SET status = $1, reviewed_by = $2, finalized_by = $3, resolved_at = $4
		WHERE id = $5`
	res, err := r.getExecutor(exec).ExecContext(ctx, query,
		rep.Status, rep.ReviewedBy, rep.FinalizedBy, rep.ResolvedAt, rep.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve match report %d: %w", rep.ID, err)
	}
	return checkAffectedRows(res, ErrReportNotFound)
}

func (r *postgresMatchReportRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.MatchReport, error) {
	query := `SELECT ` + reportColumns + ` FROM match_reports WHERE match_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for match %d: %w", matchID, err)
	}
	defer rows.Close()

	reports := make([]models.MatchReport, 0)
	for rows.Next() {
		rep, scanErr := scanReport(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		reports = append(reports, *rep)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}
