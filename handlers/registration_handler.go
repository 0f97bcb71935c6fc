package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(rs services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: rs}
}

type registerTeamInput struct {
	TeamID int `json:"team_id" validate:"required,gt=0"`
}

// RegisterTeam godoc
// @Summary Зарегистрировать команду на турнир
// @Tags registrations
// @Description Капитан команды (или администратор) подаёт заявку. При заполненном турнире заявка попадает в лист ожидания.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body registerTeamInput true "ID команды"
// @Success 201 {object} map[string]interface{} "Заявка создана (registered или waitlisted)"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Не капитан команды"
// @Failure 404 {object} map[string]string "Турнир или команда не найдены"
// @Failure 409 {object} map[string]string "Команда уже зарегистрирована"
// @Failure 422 {object} map[string]string "Регистрация закрыта / команда забанена / другой дивизион"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/registrations [post]
func (h *RegistrationHandler) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var input registerTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fieldErrors := validateInput(input); fieldErrors != nil {
		failedValidationResponse(w, r, fieldErrors)
		return
	}

	registration, err := h.registrationService.Register(r.Context(), tournamentID, input.TeamID, caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": registration}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Withdraw godoc
// @Summary Снять команду с турнира
// @Tags registrations
// @Description Запись помечается withdrawn; освободившееся место получает самая старая заявка из листа ожидания.
// @Param tournamentID path int true "Tournament ID"
// @Param teamID path int true "Team ID"
// @Success 204 "Команда снята"
// @Failure 403 {object} map[string]string "Не капитан команды"
// @Failure 404 {object} map[string]string "Активная заявка не найдена"
// @Failure 422 {object} map[string]string "Турнир уже начат"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/registrations/{teamID} [delete]
func (h *RegistrationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	if err := h.registrationService.Withdraw(r.Context(), tournamentID, teamID, caller); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRegistrations обрабатывает GET /tournaments/{tournamentID}/registrations?status=
func (h *RegistrationHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var statusFilter *models.RegistrationStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := models.RegistrationStatus(statusStr)
		switch status {
		case models.RegistrationRegistered, models.RegistrationWaitlisted, models.RegistrationWithdrawn:
			statusFilter = &status
		default:
			badRequestResponse(w, r, fmt.Errorf("invalid status query parameter %q", statusStr))
			return
		}
	}

	registrations, err := h.registrationService.ListRegistrations(r.Context(), tournamentID, statusFilter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registrations": registrations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
