package models

import "time"

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportConfirmed ReportStatus = "confirmed"
	ReportRejected  ReportStatus = "rejected"
	ReportFinalized ReportStatus = "finalized"
)

// MatchReport: заявленный капитаном или админом счёт матча.
type MatchReport struct {
	ID          int          `json:"id" db:"id"`
	MatchID     int          `json:"match_id" db:"match_id"`
	ReporterID  int          `json:"reporter_id" db:"reporter_id"`
	ScoreA      int          `json:"score_a" db:"score_a"`
	ScoreB      int          `json:"score_b" db:"score_b"`
	Status      ReportStatus `json:"status" db:"status"`
	ReviewedBy  *int         `json:"reviewed_by,omitempty" db:"reviewed_by"`
	FinalizedBy *int         `json:"finalized_by,omitempty" db:"finalized_by"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty" db:"resolved_at"`
}
