package services

import "errors"

// Виды ошибок. Хендлеры маппят их в HTTP-коды через errors.Is.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrConflict           = errors.New("conflict with current state")
	ErrInvalidState       = errors.New("operation not allowed in current state")
	ErrValidationFailed   = errors.New("validation failed")
)

// kindError несёт собственное сообщение, но для errors.Is ведёт себя как свой вид.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	// NotFound
	ErrTournamentNotFound   = newError(ErrNotFound, "tournament not found")
	ErrTeamNotFound         = newError(ErrNotFound, "team not found")
	ErrRegistrationNotFound = newError(ErrNotFound, "active registration not found")
	ErrMatchNotFound        = newError(ErrNotFound, "match not found")
	ErrReportNotFound       = newError(ErrNotFound, "match report not found")

	// Forbidden
	ErrAdminRequired           = newError(ErrForbiddenOperation, "only an administrator can perform this action")
	ErrCaptainRequired         = newError(ErrForbiddenOperation, "only the team captain or an administrator can perform this action")
	ErrNotMatchParticipant     = newError(ErrForbiddenOperation, "only a captain of a participating team or an administrator can report this match")
	ErrOppositeCaptainRequired = newError(ErrForbiddenOperation, "only the opposing team's captain or an administrator can review this report")

	// Conflict
	ErrAlreadyRegistered      = newError(ErrConflict, "team is already registered for this tournament")
	ErrPendingReportExists    = newError(ErrConflict, "match already has a pending report")
	ErrReportAlreadyFinalized = newError(ErrConflict, "match report is already finalized")

	// InvalidState
	ErrRegistrationClosed      = newError(ErrInvalidState, "registration deadline has passed")
	ErrDivisionMismatch        = newError(ErrInvalidState, "team division does not match tournament division")
	ErrTeamBanned              = newError(ErrInvalidState, "team is banned")
	ErrTournamentNotUpcoming   = newError(ErrInvalidState, "tournament has already started")
	ErrTournamentNotOngoing    = newError(ErrInvalidState, "tournament is not in progress")
	ErrTournamentNotCompleted  = newError(ErrInvalidState, "tournament is not completed")
	ErrUnsupportedFormat       = newError(ErrInvalidState, "tournament format does not support bracket generation")
	ErrNotEnoughTeams          = newError(ErrInvalidState, "at least 2 registered teams are required to generate a bracket")
	ErrInvalidStatusTransition = newError(ErrInvalidState, "invalid tournament status transition")
	ErrReportNotPending        = newError(ErrInvalidState, "match report is not pending")
	ErrReportRejected          = newError(ErrInvalidState, "match report was rejected")
	ErrByeMatch                = newError(ErrInvalidState, "bye matches have no result to report")

	// ValidationError
	ErrNegativeScore             = newError(ErrValidationFailed, "scores must be non-negative integers")
	ErrTournamentNameRequired    = newError(ErrValidationFailed, "tournament name is required")
	ErrTournamentInvalidDates    = newError(ErrValidationFailed, "tournament end date must be after start date")
	ErrTournamentInvalidCapacity = newError(ErrValidationFailed, "tournament max teams must be positive")
	ErrInvalidID                 = newError(ErrValidationFailed, "identifier must be a positive integer")
)
