package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/burgerboard/api/internal/database"
	"github.com/burgerboard/api/internal/order"
	"github.com/shopspring/decimal"
)

// Revenue periods.
const (
	PeriodMonth = "month"
	PeriodWeek  = "week"
)

// weeklyRevenueWindow is how many of the most recent weeks the weekly series keeps.
const weeklyRevenueWindow = 8

// noPhoneKey groups orders placed without a phone number.
const noPhoneKey = "Sin teléfono"

var ErrInvalidPeriod = errors.New("period must be month or week")

// ReportStore defines the DB methods needed by the report service.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
}

// ReportService computes sales analytics over stored orders.
type ReportService struct {
	store ReportStore
	loc   *time.Location
}

// NewReportService creates a new ReportService. loc defines month and week
// boundaries; nil means UTC.
func NewReportService(store ReportStore, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{store: store, loc: loc}
}

// Summary is the headline figures for a date range.
type Summary struct {
	OrderCount      int
	Revenue         decimal.Decimal
	AverageTicket   decimal.Decimal
	UniqueCustomers int
}

// ProductStat aggregates one (burger_type, patty_size, combo) product.
// Revenue apportions each order's total evenly across its lines.
type ProductStat struct {
	BurgerType string
	PattySize  string
	Combo      bool
	Quantity   int
	Revenue    decimal.Decimal
}

// CustomerStat aggregates the orders placed from one phone number.
type CustomerStat struct {
	Cliente string
	Orders  int
	Total   decimal.Decimal
}

// RevenuePoint is the revenue of one month or week, keyed by its first day.
type RevenuePoint struct {
	PeriodStart time.Time
	Revenue     decimal.Decimal
}

// Summary returns order count, revenue, average ticket and unique customers.
func (s *ReportService) Summary(ctx context.Context, start, end time.Time) (*Summary, error) {
	orders, err := s.load(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return summarize(orders), nil
}

// Products returns the product ranking, best sellers first.
func (s *ReportService) Products(ctx context.Context, start, end time.Time) ([]ProductStat, error) {
	orders, err := s.load(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return productStats(orders), nil
}

// Customers returns the customer ranking, biggest spenders first.
func (s *ReportService) Customers(ctx context.Context, start, end time.Time) ([]CustomerStat, error) {
	orders, err := s.load(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return customerStats(orders), nil
}

// Revenue returns revenue per month or per week, oldest first. The weekly
// series keeps only the last weeklyRevenueWindow weeks that had orders.
func (s *ReportService) Revenue(ctx context.Context, start, end time.Time, period string) ([]RevenuePoint, error) {
	if period != PeriodMonth && period != PeriodWeek {
		return nil, ErrInvalidPeriod
	}
	orders, err := s.load(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return revenueByPeriod(orders, period, s.loc), nil
}

func (s *ReportService) load(ctx context.Context, start, end time.Time) ([]order.Order, error) {
	rows, err := s.store.ListOrders(ctx, database.ListOrdersParams{
		StartAt: timestamptz(start),
		EndAt:   timestamptz(end),
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrders(rows)
}

// --- Aggregations ---

func summarize(orders []order.Order) *Summary {
	sum := &Summary{
		OrderCount:    len(orders),
		Revenue:       decimal.Zero,
		AverageTicket: decimal.Zero,
	}
	phones := make(map[string]struct{})
	for _, o := range orders {
		sum.Revenue = sum.Revenue.Add(o.Monto)
		phones[customerKey(o)] = struct{}{}
	}
	sum.UniqueCustomers = len(phones)
	if len(orders) > 0 {
		sum.AverageTicket = sum.Revenue.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	}
	return sum
}

func productStats(orders []order.Order) []ProductStat {
	type key struct {
		burger string
		size   string
		combo  bool
	}

	index := make(map[key]int)
	var out []ProductStat
	for _, o := range orders {
		if len(o.Items) == 0 {
			continue
		}
		share := o.Monto.Div(decimal.NewFromInt(int64(len(o.Items))))
		for _, it := range o.Items {
			name := strings.TrimSpace(it.BurgerType)
			if name == "" {
				continue
			}
			size := it.PattySize
			if size == "" {
				size = order.PattySimple
			}
			k := key{burger: name, size: size, combo: it.Combo}

			i, ok := index[k]
			if !ok {
				i = len(out)
				index[k] = i
				out = append(out, ProductStat{BurgerType: name, PattySize: size, Combo: it.Combo, Revenue: decimal.Zero})
			}
			out[i].Quantity += it.Qty()
			out[i].Revenue = out[i].Revenue.Add(share)
		}
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Quantity > out[b].Quantity })
	for i := range out {
		out[i].Revenue = out[i].Revenue.Round(2)
	}
	return out
}

func customerStats(orders []order.Order) []CustomerStat {
	index := make(map[string]int)
	var out []CustomerStat
	for _, o := range orders {
		k := customerKey(o)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, CustomerStat{Cliente: k, Total: decimal.Zero})
		}
		out[i].Orders++
		out[i].Total = out[i].Total.Add(o.Monto)
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Total.GreaterThan(out[b].Total) })
	return out
}

func revenueByPeriod(orders []order.Order, period string, loc *time.Location) []RevenuePoint {
	totals := make(map[time.Time]decimal.Decimal)
	for _, o := range orders {
		k := periodStart(o.CreatedAt, period, loc)
		cur, ok := totals[k]
		if !ok {
			cur = decimal.Zero
		}
		totals[k] = cur.Add(o.Monto)
	}

	out := make([]RevenuePoint, 0, len(totals))
	for k, v := range totals {
		out = append(out, RevenuePoint{PeriodStart: k, Revenue: v})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].PeriodStart.Before(out[b].PeriodStart) })

	if period == PeriodWeek && len(out) > weeklyRevenueWindow {
		out = out[len(out)-weeklyRevenueWindow:]
	}
	return out
}

// periodStart returns local midnight of the first day of t's month, or of
// the Monday starting t's week.
func periodStart(t time.Time, period string, loc *time.Location) time.Time {
	t = t.In(loc)
	if period == PeriodMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	}
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, loc)
}

func customerKey(o order.Order) string {
	if p := strings.TrimSpace(o.Telefono); p != "" {
		return p
	}
	return noPhoneKey
}
