package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/burgerboard/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// ReportServicer defines the service methods needed by report handlers.
// Satisfied by *service.ReportService; narrow interface for testability.
type ReportServicer interface {
	Summary(ctx context.Context, start, end time.Time) (*service.Summary, error)
	Products(ctx context.Context, start, end time.Time) ([]service.ProductStat, error)
	Customers(ctx context.Context, start, end time.Time) ([]service.CustomerStat, error)
	Revenue(ctx context.Context, start, end time.Time, period string) ([]service.RevenuePoint, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	svc ReportServicer
	loc *time.Location
	now func() time.Time
}

// NewReportsHandler creates a new ReportsHandler. loc interprets the date
// range query params.
func NewReportsHandler(svc ReportServicer, loc *time.Location) *ReportsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportsHandler{svc: svc, loc: loc, now: time.Now}
}

// RegisterRoutes registers report endpoints.
// Expected to be mounted at /reports.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
	r.Get("/products", h.Products)
	r.Get("/customers", h.Customers)
	r.Get("/revenue", h.Revenue)
}

// --- Response types ---

type summaryResponse struct {
	OrderCount      int    `json:"order_count"`
	TotalRevenue    string `json:"total_revenue"`
	AverageTicket   string `json:"average_ticket"`
	UniqueCustomers int    `json:"unique_customers"`
}

type productStatResponse struct {
	BurgerType   string `json:"burger_type"`
	PattySize    string `json:"patty_size"`
	Combo        bool   `json:"combo"`
	QuantitySold int    `json:"quantity_sold"`
	TotalRevenue string `json:"total_revenue"`
}

type customerStatResponse struct {
	Cliente    string `json:"cliente"`
	OrderCount int    `json:"order_count"`
	TotalSpent string `json:"total_spent"`
}

type revenuePointResponse struct {
	Period  string `json:"period"`
	Revenue string `json:"revenue"`
}

// --- Handlers ---

// Summary returns totals, average ticket and unique customers for a date range.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := h.parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	sum, err := h.svc.Summary(r.Context(), startDate, endDate)
	if err != nil {
		writeServiceError(w, r, "report summary", err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		OrderCount:      sum.OrderCount,
		TotalRevenue:    sum.Revenue.StringFixed(2),
		AverageTicket:   sum.AverageTicket.StringFixed(2),
		UniqueCustomers: sum.UniqueCustomers,
	})
}

// Products returns products ranked by quantity sold.
func (h *ReportsHandler) Products(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := h.parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	stats, err := h.svc.Products(r.Context(), startDate, endDate)
	if err != nil {
		writeServiceError(w, r, "report products", err)
		return
	}

	resp := make([]productStatResponse, len(stats))
	for i, s := range stats {
		resp[i] = productStatResponse{
			BurgerType:   s.BurgerType,
			PattySize:    s.PattySize,
			Combo:        s.Combo,
			QuantitySold: s.Quantity,
			TotalRevenue: s.Revenue.StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Customers returns customers ranked by total spent.
func (h *ReportsHandler) Customers(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := h.parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	stats, err := h.svc.Customers(r.Context(), startDate, endDate)
	if err != nil {
		writeServiceError(w, r, "report customers", err)
		return
	}

	resp := make([]customerStatResponse, len(stats))
	for i, s := range stats {
		resp[i] = customerStatResponse{
			Cliente:    s.Cliente,
			OrderCount: s.Orders,
			TotalSpent: s.Total.StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Revenue returns revenue per month (default) or per week.
func (h *ReportsHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := h.parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = service.PeriodMonth
	}

	points, err := h.svc.Revenue(r.Context(), startDate, endDate, period)
	if err != nil {
		writeServiceError(w, r, "report revenue", err)
		return
	}

	resp := make([]revenuePointResponse, len(points))
	for i, p := range points {
		resp[i] = revenuePointResponse{
			Period:  p.PeriodStart.Format("2006-01-02"),
			Revenue: p.Revenue.StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// parseDateRange parses start_date and end_date query params in the
// restaurant's time zone. Defaults to the last 30 days if not provided.
// Returns (startDate, endDate, error) where endDate is exclusive (next day midnight).
func (h *ReportsHandler) parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	now := h.now().In(h.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)

	// Default: last 30 days (midnight to midnight in local time)
	startDate := today.AddDate(0, 0, -30)
	endDate := today.AddDate(0, 0, 1)

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format: %w", err)
		}
		startDate = t
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format: %w", err)
		}
		// Make end_date exclusive by adding 1 day
		endDate = t.AddDate(0, 0, 1)
	}

	if !startDate.Before(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must be before end_date")
	}

	return startDate, endDate, nil
}
