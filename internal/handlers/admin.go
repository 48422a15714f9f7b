package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lotto-office/internal/db"
	"lotto-office/internal/lotto"
	"lotto-office/internal/models"
	"lotto-office/internal/reports"
	"lotto-office/internal/services"
)

func (h *Handler) AdminListPeriods(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListPeriods(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Period{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) AdminCreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req CreatePeriodRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	p := models.Period{Name: req.Name, Date: date}
	if err := h.store.CreatePeriod(r.Context(), &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info("period created", zap.Int64("period_id", p.ID), zap.String("name", p.Name))
	writeJSON(w, http.StatusCreated, p)
}

// AdminOpenPeriod makes {id} the only open period.
func (h *Handler) AdminOpenPeriod(w http.ResponseWriter, r *http.Request) {
	h.setPeriodStatus(w, r, true)
}

func (h *Handler) AdminClosePeriod(w http.ResponseWriter, r *http.Request) {
	h.setPeriodStatus(w, r, false)
}

func (h *Handler) setPeriodStatus(w http.ResponseWriter, r *http.Request, open bool) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if open {
		err = h.store.OpenPeriod(r.Context(), id)
	} else {
		err = h.store.ClosePeriod(r.Context(), id)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.store.GetPeriod(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info("period status changed", zap.Int64("period_id", id), zap.String("status", p.Status))
	writeJSON(w, http.StatusOK, p)
}

// AdminAddHalfPrice flags a number for the period (current period when
// period_id is omitted). With six_reverse every permutation of a 3-digit
// number is flagged, with reverse both orders of a 2-digit number.
func (h *Handler) AdminAddHalfPrice(w http.ResponseWriter, r *http.Request) {
	var req HalfPriceRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	periodID := req.PeriodID
	if periodID == 0 {
		p, err := h.store.CurrentPeriod(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		periodID = p.ID
	}

	numbers := []string{req.Number}
	switch {
	case req.SixReverse && len(req.Number) == 3:
		numbers = lotto.Permutations(req.Number)
	case req.Reverse && len(req.Number) == 2:
		if rev := lotto.Reverse(req.Number); rev != req.Number {
			numbers = append(numbers, rev)
		}
	}

	added, err := h.store.AddHalfPrices(r.Context(), periodID, numbers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info("half prices added", zap.Int64("period_id", periodID), zap.Strings("numbers", numbers), zap.Int("added", added))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"period_id": periodID,
		"numbers":   numbers,
		"added":     added,
	})
}

func (h *Handler) AdminDeleteHalfPrice(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.DeleteHalfPrice(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resultResponse struct {
	Result  models.Result         `json:"result"`
	Summary reports.PeriodSummary `json:"summary"`
}

// AdminPostResult stores the draw of a period and answers with the period
// summary. The 2up result defaults to the last two digits of 3up and the
// toad set is always derived from 3up.
func (h *Handler) AdminPostResult(w http.ResponseWriter, r *http.Request) {
	var req ResultRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	ctx := r.Context()

	period, err := h.store.GetPeriod(ctx, req.PeriodID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res := models.Result{
		PeriodID:    period.ID,
		Result3Up:   req.Result3Up,
		Result2Up:   req.Result2Up,
		Result2Down: req.Result2Down,
		Result3Toad: lotto.ToadNumbers(req.Result3Up),
		ResultDate:  time.Now(),
	}
	if res.Result2Up == "" {
		res.Result2Up = req.Result3Up[1:]
	}
	if req.ResultDate != "" {
		res.ResultDate, _ = time.Parse("2006-01-02", req.ResultDate)
	}
	if err := h.store.SaveResult(ctx, &res); err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.store.ListBills(ctx, period.ID, 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	summary := reports.Summarize(period.ID, list, &res, h.halfPrices(ctx, period.ID), h.rates)

	h.log.Info("result posted",
		zap.Int64("period_id", period.ID),
		zap.String("result_3up", res.Result3Up),
		zap.String("result_2down", res.Result2Down),
		zap.Int("winners", len(summary.Winners)))
	h.notify.NotifyAdmin(services.ResultMessage(period, res, summary.Rewards))

	writeJSON(w, http.StatusOK, resultResponse{Result: res, Summary: summary})
}

// AdminSummary reports sales, rewards and profit for ?period_id. Rewards stay
// zero until the result is posted.
func (h *Handler) AdminSummary(w http.ResponseWriter, r *http.Request) {
	periodID, err := h.periodParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ctx := r.Context()

	list, err := h.store.ListBills(ctx, periodID, 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.store.ResultForPeriod(ctx, periodID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports.Summarize(periodID, list, res, h.halfPrices(ctx, periodID), h.rates))
}

func (h *Handler) AdminCommissions(w http.ResponseWriter, r *http.Request) {
	periodID, err := h.periodParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.store.ListBills(r.Context(), periodID, 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	agents, err := h.store.ListAgents(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports.AgentCommissions(list, agents))
}

func (h *Handler) AdminFrequencyCSV(w http.ResponseWriter, r *http.Request) {
	periodID, err := h.periodParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.store.ListBills(r.Context(), periodID, 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="frequency_%d.csv"`, periodID))
	if err := reports.WriteFrequencyCSV(w, reports.Frequency(list)); err != nil {
		h.log.Error("write frequency csv", zap.Int64("period_id", periodID), zap.Error(err))
	}
}

func (h *Handler) AdminListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.store.ListAgents(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if agents == nil {
		agents = []models.User{}
	}
	writeJSON(w, http.StatusOK, agents)
}

func (h *Handler) AdminCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	u := models.User{
		TelegramID:    req.TelegramID,
		Name:          req.Name,
		Phone:         req.Phone,
		Role:          req.Role,
		IncomePercent: req.IncomePercent,
	}
	if u.Role == "" {
		u.Role = models.RoleAgent
	}
	if err := h.store.CreateUser(r.Context(), &u); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info("user created", zap.Int64("user_id", u.ID), zap.String("role", u.Role))
	writeJSON(w, http.StatusCreated, u)
}
