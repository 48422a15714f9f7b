package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"lotto-office/internal/bills"
	"lotto-office/internal/db"
	"lotto-office/internal/lotto"
	"lotto-office/internal/metrics"
	"lotto-office/internal/middleware"
	"lotto-office/internal/models"
	"lotto-office/internal/receipt"
	"lotto-office/internal/services"
)

// Store is the persistence the handlers need. *db.Store implements it.
type Store interface {
	ListAgents(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, u *models.User) error

	ListPeriods(ctx context.Context) ([]models.Period, error)
	GetPeriod(ctx context.Context, id int64) (models.Period, error)
	CurrentPeriod(ctx context.Context) (models.Period, error)
	CreatePeriod(ctx context.Context, p *models.Period) error
	OpenPeriod(ctx context.Context, id int64) error
	ClosePeriod(ctx context.Context, id int64) error

	HalfPrices(ctx context.Context, periodID int64) ([]models.HalfPriceEntry, error)
	AddHalfPrices(ctx context.Context, periodID int64, numbers []string) (int, error)
	DeleteHalfPrice(ctx context.Context, id int64) error

	CreateBill(ctx context.Context, b *models.Bill) error
	GetBill(ctx context.Context, id int64) (models.Bill, error)
	ListBills(ctx context.Context, periodID, agentID int64) ([]models.Bill, error)
	UpdateBill(ctx context.Context, b *models.Bill, c bills.Changes) error
	DeleteBill(ctx context.Context, id int64) error

	SaveResult(ctx context.Context, r *models.Result) error
	ResultForPeriod(ctx context.Context, periodID int64) (*models.Result, error)
}

// Notifier delivers admin notifications.
type Notifier interface {
	NotifyAdmin(text string)
}

type Handler struct {
	store  Store
	notify Notifier
	rates  lotto.Rates
	log    *zap.Logger
}

func New(store Store, notify Notifier, rates lotto.Rates, log *zap.Logger) *Handler {
	if rates == nil {
		rates = lotto.DefaultRates()
	}
	return &Handler{store: store, notify: notify, rates: rates, log: log}
}

// Mount registers the agent routes and, behind RequireAdmin, the admin routes.
// Callers are expected to have authenticated the request already.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/periods/current", h.CurrentPeriod)
	r.Get("/half-prices", h.ListHalfPrices)
	r.Post("/tickets/expand", h.ExpandTicket)

	r.Route("/bills", func(r chi.Router) {
		r.Get("/", h.ListBills)
		r.Post("/", h.CreateBill)
		r.Get("/{id}", h.GetBill)
		r.Put("/{id}", h.UpdateBill)
		r.Delete("/{id}", h.DeleteBill)
		r.Get("/{id}/receipt", h.GetReceipt)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Get("/periods", h.AdminListPeriods)
		r.Post("/periods", h.AdminCreatePeriod)
		r.Post("/periods/{id}/open", h.AdminOpenPeriod)
		r.Post("/periods/{id}/close", h.AdminClosePeriod)

		r.Post("/half-prices", h.AdminAddHalfPrice)
		r.Delete("/half-prices/{id}", h.AdminDeleteHalfPrice)

		r.Post("/results", h.AdminPostResult)

		r.Get("/reports/summary", h.AdminSummary)
		r.Get("/reports/commissions", h.AdminCommissions)
		r.Get("/reports/frequency.csv", h.AdminFrequencyCSV)

		r.Get("/agents", h.AdminListAgents)
		r.Post("/agents", h.AdminCreateAgent)
	})
}

func (h *Handler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.CurrentPeriod(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListHalfPrices returns the half-price list of ?period_id, or of the
// current period.
func (h *Handler) ListHalfPrices(w http.ResponseWriter, r *http.Request) {
	periodID, err := h.periodParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.halfPrices(r.Context(), periodID))
}

type expandRequest struct {
	bills.Entry
	PeriodID int64 `json:"period_id"`
}

type expandedTicket struct {
	BetType     models.BetType `json:"bet_type"`
	Numbers     []string       `json:"numbers"`
	HalfPrice   []string       `json:"half_price"`
	TotalAmount string         `json:"total_amount"`
}

// ExpandTicket previews what an entry turns into: the concrete numbers of
// each resulting ticket and which of them are on the half-price list.
func (h *Handler) ExpandTicket(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: malformed body", bills.ErrInvalid))
		return
	}

	pending := bills.NewPending()
	if err := pending.AddEntry(req.Entry); err != nil {
		h.writeError(w, r, err)
		return
	}

	var halves []models.HalfPriceEntry
	if req.PeriodID > 0 {
		halves = h.halfPrices(r.Context(), req.PeriodID)
	} else if p, err := h.store.CurrentPeriod(r.Context()); err == nil {
		halves = h.halfPrices(r.Context(), p.ID)
	}

	var out []expandedTicket
	for _, t := range pending.Tickets() {
		e := expandedTicket{
			BetType:     t.BetType,
			Numbers:     lotto.ExpandTicket(t),
			HalfPrice:   []string{},
			TotalAmount: lotto.TicketTotal(t).StringFixed(2),
		}
		for _, n := range e.Numbers {
			if lotto.IsHalfPrice(n, t.BetType, halves) {
				e.HalfPrice = append(e.HalfPrice, n)
			}
		}
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, out)
}

// ListBills lists the bills of ?period_id (default: current period). Agents
// only see their own bills; admins may filter with ?agent_id.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	periodID, err := h.periodParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, _ := middleware.FromContext(r.Context())
	agentID := p.UserID
	if p.IsAdmin() {
		agentID, _ = strconv.ParseInt(r.URL.Query().Get("agent_id"), 10, 64)
	}

	list, err := h.store.ListBills(r.Context(), periodID, agentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Bill{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	caller, _ := middleware.FromContext(ctx)

	period, err := h.store.CurrentPeriod(ctx)
	if errors.Is(err, db.ErrNotFound) {
		h.writeError(w, r, bills.ErrPeriodClosed)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	pending := bills.NewPending()
	for i, e := range req.Entries {
		if err := pending.AddEntry(e); err != nil {
			h.writeError(w, r, fmt.Errorf("entry %d: %w", i+1, err))
			return
		}
	}

	bill, err := bills.Build(req.BuyerName, caller.UserID, period, pending, h.halfPrices(ctx, period.ID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.CreateBill(ctx, &bill); err != nil {
		h.writeError(w, r, err)
		return
	}
	bill.AgentName = caller.Name

	betTypes := make([]string, len(bill.Tickets))
	for i, t := range bill.Tickets {
		betTypes[i] = t.BetType.String()
	}
	total, _ := bill.TotalAmount.Float64()
	metrics.BillCreated(betTypes, total)

	h.log.Info("bill created",
		zap.Int64("bill_id", bill.ID),
		zap.Int64("agent_id", bill.AgentID),
		zap.Int("tickets", len(bill.Tickets)),
		zap.String("total", bill.TotalAmount.StringFixed(2)))
	h.notify.NotifyAdmin(services.BillMessage(bill, caller.Name))

	writeJSON(w, http.StatusCreated, bill)
}

func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.ownBill(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

type receiptRow struct {
	receipt.Row
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

type receiptSection struct {
	Key   string       `json:"key"`
	Title string       `json:"title"`
	Rows  []receiptRow `json:"rows"`
}

type receiptResponse struct {
	receipt.Receipt
	Sections []receiptSection `json:"sections"`
}

func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.ownBill(w, r)
	if !ok {
		return
	}

	rc := receipt.Group(bill)
	resp := receiptResponse{Receipt: rc, Sections: make([]receiptSection, 0, len(rc.Sections))}
	for _, s := range rc.Sections {
		sec := receiptSection{Key: s.Key, Title: s.Title}
		for _, row := range s.Rows {
			sec.Rows = append(sec.Rows, receiptRow{Row: row, Label: row.Label(), Amount: row.Amount().StringFixed(2)})
		}
		resp.Sections = append(resp.Sections, sec)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateBill applies an edit: saved tickets missing from req.Tickets are
// removed, listed ones get their stakes updated and req.Entries are added.
func (h *Handler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	saved, ok := h.ownBill(w, r)
	if !ok {
		return
	}
	var req UpdateBillRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	ctx := r.Context()

	period, err := h.store.GetPeriod(ctx, saved.PeriodID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	pending := bills.LoadForEdit(saved)
	keep := make(map[int64]TicketEdit, len(req.Tickets))
	for _, t := range req.Tickets {
		if pending.IndexOf(t.ID) < 0 {
			h.writeError(w, r, fmt.Errorf("%w: ticket %d is not part of bill %d", bills.ErrInvalid, t.ID, saved.ID))
			return
		}
		keep[t.ID] = t
	}

	tickets := pending.Tickets()
	for i := len(tickets) - 1; i >= 0; i-- {
		if _, ok := keep[tickets[i].ID]; !ok {
			if err := pending.Remove(i); err != nil {
				h.writeError(w, r, err)
				return
			}
		}
	}
	for _, t := range req.Tickets {
		if err := pending.SetPrice(pending.IndexOf(t.ID), t.Price, t.PriceToad); err != nil {
			h.writeError(w, r, fmt.Errorf("ticket %d: %w", t.ID, err))
			return
		}
	}
	for i, e := range req.Entries {
		if err := pending.AddEntry(e); err != nil {
			h.writeError(w, r, fmt.Errorf("entry %d: %w", i+1, err))
			return
		}
	}

	bill, changes, err := bills.BuildUpdate(saved, req.BuyerName, period, pending, h.halfPrices(ctx, period.ID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.UpdateBill(ctx, &bill, changes); err != nil {
		h.writeError(w, r, err)
		return
	}
	// Generated IDs land in the change set.
	bill.Tickets = append(append([]models.Ticket{}, changes.Kept...), changes.Added...)
	metrics.BillUpdated()
	h.log.Info("bill updated",
		zap.Int64("bill_id", bill.ID),
		zap.Int("kept", len(changes.Kept)),
		zap.Int("added", len(changes.Added)),
		zap.Int("removed", len(changes.Removed)))

	writeJSON(w, http.StatusOK, bill)
}

func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.ownBill(w, r)
	if !ok {
		return
	}
	period, err := h.store.GetPeriod(r.Context(), bill.PeriodID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !period.IsOpen() {
		h.writeError(w, r, bills.ErrPeriodClosed)
		return
	}
	if err := h.store.DeleteBill(r.Context(), bill.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.BillDeleted()
	h.log.Info("bill deleted", zap.Int64("bill_id", bill.ID))
	w.WriteHeader(http.StatusNoContent)
}

// ownBill loads the {id} bill. Agents asking for somebody else's bill get
// a 404.
func (h *Handler) ownBill(w http.ResponseWriter, r *http.Request) (models.Bill, bool) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return models.Bill{}, false
	}
	bill, err := h.store.GetBill(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return models.Bill{}, false
	}
	p, _ := middleware.FromContext(r.Context())
	if !p.IsAdmin() && bill.AgentID != p.UserID {
		h.writeError(w, r, db.ErrNotFound)
		return models.Bill{}, false
	}
	return bill, true
}

// halfPrices never fails: a lookup error leaves the list empty so pricing
// falls back to full rates.
func (h *Handler) halfPrices(ctx context.Context, periodID int64) []models.HalfPriceEntry {
	list, err := h.store.HalfPrices(ctx, periodID)
	if err != nil {
		h.log.Warn("half price lookup failed", zap.Int64("period_id", periodID), zap.Error(err))
		return []models.HalfPriceEntry{}
	}
	return list
}

// periodParam reads ?period_id, defaulting to the current period.
func (h *Handler) periodParam(r *http.Request) (int64, error) {
	if raw := r.URL.Query().Get("period_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("%w: bad period_id", bills.ErrInvalid)
		}
		return id, nil
	}
	p, err := h.store.CurrentPeriod(r.Context())
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id", bills.ErrInvalid)
	}
	return id, nil
}

// decode reads a JSON body and runs its Validate method.
func decode(r *http.Request, req validation.Validatable) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return fmt.Errorf("%w: malformed body", bills.ErrInvalid)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", bills.ErrInvalid, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error  string `json:"error"`
	Number string `json:"number,omitempty"`
}

// writeError maps domain errors to status codes. Anything unexpected is
// logged and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var dup *bills.DuplicateError
	switch {
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Number: dup.Number})
	case errors.Is(err, bills.ErrPeriodClosed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "งวดนี้ปิดรับแล้ว"})
	case errors.Is(err, bills.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, db.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "เกิดข้อผิดพลาด กรุณาลองใหม่อีกครั้ง"})
	}
}
