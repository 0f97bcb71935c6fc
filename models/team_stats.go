package models

import "time"

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// Фиксированная таблица очков: победа 3, ничья 1, поражение 0.
const (
	PointsForWin  = 3
	PointsForDraw = 1
	PointsForLoss = 0
)

// TeamStats: накопительная статистика команды. Меняется только через Standings Ledger.
type TeamStats struct {
	TeamID    int       `json:"team_id" db:"team_id"`
	Wins      int       `json:"wins" db:"wins"`
	Losses    int       `json:"losses" db:"losses"`
	Draws     int       `json:"draws" db:"draws"`
	Points    int       `json:"points" db:"points"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (s TeamStats) Played() int {
	return s.Wins + s.Losses + s.Draws
}

// StatsDelta is a signed change applied to a TeamStats row.
type StatsDelta struct {
	Wins   int
	Losses int
	Draws  int
	Points int
}

// DeltaFor returns the counters an outcome increments; sign -1 reverts them.
func DeltaFor(outcome Outcome, sign int) StatsDelta {
	switch outcome {
	case OutcomeWin:
		return StatsDelta{Wins: sign, Points: sign * PointsForWin}
	case OutcomeDraw:
		return StatsDelta{Draws: sign, Points: sign * PointsForDraw}
	default:
		return StatsDelta{Losses: sign, Points: sign * PointsForLoss}
	}
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	TeamID   int    `json:"team_id"`
	TeamName string `json:"team_name,omitempty"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
	Points   int    `json:"points"`
}

// StandingsDiscrepancy describes a team whose counters disagree with decided matches.
type StandingsDiscrepancy struct {
	TeamID   int `json:"team_id"`
	Recorded int `json:"recorded"`
	Expected int `json:"expected"`
}
