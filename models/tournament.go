package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusOngoing   TournamentStatus = "ongoing"
	StatusCompleted TournamentStatus = "completed"
)

type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elim"
)

// Tournament представляет турнир.
type Tournament struct {
	ID         int              `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	DivisionID int              `json:"division_id" db:"division_id"`
	Format     TournamentFormat `json:"format" db:"format"`
	Status     TournamentStatus `json:"status" db:"status"`
	StartDate  time.Time        `json:"start_date" db:"start_date"`
	EndDate    *time.Time       `json:"end_date,omitempty" db:"end_date"`
	MaxTeams   *int             `json:"max_teams,omitempty" db:"max_teams"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

// RegistrationDeadline закрывает регистрацию ровно за час до старта.
func (t Tournament) RegistrationDeadline() time.Time {
	return t.StartDate.Add(-RegistrationCloseOffset)
}

const RegistrationCloseOffset = time.Hour

// HasCapacityFor сообщает, можно ли принять ещё одну команду при текущем числе registered.
func (t Tournament) HasCapacityFor(registered int) bool {
	return t.MaxTeams == nil || registered < *t.MaxTeams
}

// TournamentOverview собирает турнир со всеми связанными данными для одного ответа.
type TournamentOverview struct {
	Tournament    *Tournament        `json:"tournament"`
	Registrations []Registration     `json:"registrations"`
	Matches       []Match            `json:"matches"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
}
