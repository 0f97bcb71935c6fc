package models

// Team is the slice of the external team directory the engine reads.
type Team struct {
	ID         int    `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	DivisionID int    `json:"division_id" db:"division_id"`
	Banned     bool   `json:"banned" db:"banned"`
}
