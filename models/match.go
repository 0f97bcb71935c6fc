package models

import "time"

type MatchResult string

const (
	ResultTeamA MatchResult = "teamA"
	ResultTeamB MatchResult = "teamB"
	ResultDraw  MatchResult = "draw"
)

type MatchFormat string

const (
	MatchFormatBo1 MatchFormat = "bo1"
	MatchFormatBo3 MatchFormat = "bo3"
	MatchFormatBo5 MatchFormat = "bo5"
)

// Match: матч турнира. TeamBID == nil означает bye.
type Match struct {
	ID           int          `json:"id" db:"id"`
	TournamentID int          `json:"tournament_id" db:"tournament_id"`
	Round        int          `json:"round" db:"round"`
	TeamAID      int          `json:"team_a_id" db:"team_a_id"`
	TeamBID      *int         `json:"team_b_id" db:"team_b_id"`
	ScheduledAt  time.Time    `json:"scheduled_at" db:"scheduled_at"`
	Format       MatchFormat  `json:"format" db:"format"`
	Result       *MatchResult `json:"result" db:"result"`
	ScoreA       *int         `json:"score_a,omitempty" db:"score_a"`
	ScoreB       *int         `json:"score_b,omitempty" db:"score_b"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

func (m Match) IsBye() bool {
	return m.TeamBID == nil
}

// HasTeam reports whether teamID plays in this match.
func (m Match) HasTeam(teamID int) bool {
	return m.TeamAID == teamID || (m.TeamBID != nil && *m.TeamBID == teamID)
}

// ResultFromScores determines the result string from a pair of scores.
func ResultFromScores(scoreA, scoreB int) MatchResult {
	switch {
	case scoreA > scoreB:
		return ResultTeamA
	case scoreB > scoreA:
		return ResultTeamB
	default:
		return ResultDraw
	}
}

// OutcomesFor splits a result into per-side outcomes.
func OutcomesFor(result MatchResult) (teamA, teamB Outcome) {
	switch result {
	case ResultTeamA:
		return OutcomeWin, OutcomeLoss
	case ResultTeamB:
		return OutcomeLoss, OutcomeWin
	default:
		return OutcomeDraw, OutcomeDraw
	}
}
