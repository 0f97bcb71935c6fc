package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// scoreInput: указатели, чтобы отличить отсутствующий счёт от нуля.
// Знак счёта проверяет сервис.
type scoreInput struct {
	ScoreA *int `json:"score_a" validate:"required"`
	ScoreB *int `json:"score_b" validate:"required"`
}

type finalizeInput struct {
	OverrideScoreA *int `json:"override_score_a,omitempty"`
	OverrideScoreB *int `json:"override_score_b,omitempty"`
}

// ListByTournament обрабатывает GET /tournaments/{tournamentID}/matches
func (h *MatchHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListReports возвращает все отчёты по матчу, новые первыми.
func (h *MatchHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reports, err := h.matchService.ListReports(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"reports": reports}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitReport godoc
// @Summary Сообщить результат матча
// @Tags results
// @Description Капитан одной из команд (или администратор) создаёт pending-отчёт. На матч допускается один pending-отчёт.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body scoreInput true "Счёт"
// @Success 201 {object} map[string]interface{} "Отчёт создан"
// @Failure 400 {object} map[string]string "Отрицательный счёт"
// @Failure 403 {object} map[string]string "Не капитан участвующей команды"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Уже есть pending-отчёт"
// @Failure 422 {object} map[string]string "Bye-матч или турнир не идёт"
// @Security BearerAuth
// @Router /matches/{matchID}/reports [post]
func (h *MatchHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fieldErrors := validateInput(input); fieldErrors != nil {
		failedValidationResponse(w, r, fieldErrors)
		return
	}

	report, err := h.matchService.SubmitReport(r.Context(), matchID, caller, *input.ScoreA, *input.ScoreB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfirmReport godoc
// @Summary Подтвердить отчёт
// @Tags results
// @Description Капитан противоположной команды или администратор подтверждает отчёт; результат сразу применяется к статистике.
// @Produce json
// @Param reportID path int true "Report ID"
// @Success 200 {object} map[string]interface{} "Отчёт подтверждён"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Отчёт не найден"
// @Failure 422 {object} map[string]string "Отчёт не в статусе pending"
// @Security BearerAuth
// @Router /reports/{reportID}/confirm [post]
func (h *MatchHandler) ConfirmReport(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.matchService.ConfirmReport)
}

// RejectReport обрабатывает POST /reports/{reportID}/reject
func (h *MatchHandler) RejectReport(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.matchService.RejectReport)
}

func (h *MatchHandler) review(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, reportID int, caller models.Caller) (*models.MatchReport, error)) {
	reportID, err := getIDFromURL(r, "reportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	report, err := action(r.Context(), reportID, caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeReport godoc
// @Summary Финализировать отчёт (администратор)
// @Tags results
// @Description Закрывает pending или confirmed отчёт. Переданные override-значения заменяют соответствующий счёт.
// @Accept json
// @Produce json
// @Param reportID path int true "Report ID"
// @Param body body finalizeInput false "Корректировка счёта"
// @Success 200 {object} map[string]interface{} "Отчёт финализирован"
// @Failure 403 {object} map[string]string "Только администратор"
// @Failure 404 {object} map[string]string "Отчёт не найден"
// @Failure 409 {object} map[string]string "Уже финализирован"
// @Failure 422 {object} map[string]string "Отчёт отклонён"
// @Security BearerAuth
// @Router /reports/{reportID}/finalize [post]
func (h *MatchHandler) FinalizeReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := getIDFromURL(r, "reportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	// тело необязательно: пустое означает финализацию без подмены счёта
	var input finalizeInput
	if err := readJSON(w, r, &input); err != nil && !errors.Is(err, errEmptyBody) {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.matchService.FinalizeReport(r.Context(), reportID, caller, input.OverrideScoreA, input.OverrideScoreB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CorrectResult обрабатывает PUT /matches/{matchID}/result (только администратор).
func (h *MatchHandler) CorrectResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fieldErrors := validateInput(input); fieldErrors != nil {
		failedValidationResponse(w, r, fieldErrors)
		return
	}

	match, err := h.matchService.CorrectMatchResult(r.Context(), matchID, caller, *input.ScoreA, *input.ScoreB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
