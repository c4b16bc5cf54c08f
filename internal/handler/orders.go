package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/burgerboard/api/internal/order"
	"github.com/burgerboard/api/internal/receipt"
	"github.com/burgerboard/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BoardServicer defines the service methods needed by the kitchen and
// dashboard board endpoints.
// Satisfied by *service.OrderService; narrow interface for testability.
type BoardServicer interface {
	ListOrders(ctx context.Context, req service.ListOrdersRequest) ([]order.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*order.Order, error)
	ToggleItem(ctx context.Context, id uuid.UUID, index int) (*order.Order, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// OrderHandler handles the board order endpoints.
type OrderHandler struct {
	svc BoardServicer
	loc *time.Location
}

// NewOrderHandler creates a new OrderHandler. loc interprets the date filter.
func NewOrderHandler(svc BoardServicer, loc *time.Location) *OrderHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderHandler{svc: svc, loc: loc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Patch("/{id}/items/{index}", h.ToggleItem)
	r.Patch("/{id}/dispatch", h.Dispatch)
	r.Get("/{id}/ticket", h.Ticket)
	r.Post("/{id}/ticket/preview", h.PreviewTicket)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

// previewTicketRequest carries the proposed replacement item list.
type previewTicketRequest struct {
	Kind  string       `json:"kind"`
	Items []order.Item `json:"items"`
}

type orderListResponse struct {
	Orders []order.Order `json:"orders"`
}

// --- Handlers ---

// List handles GET /orders?status=&date=YYYY-MM-DD. Without a date it lists today.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	req := service.ListOrdersRequest{Status: r.URL.Query().Get("status")}

	if s := r.URL.Query().Get("date"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, h.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD", nil)
			return
		}
		req.Date = t
	}

	orders, err := h.svc.ListOrders(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "list orders", err)
		return
	}

	writeJSON(w, http.StatusOK, orderListResponse{Orders: orders})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	o, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get order", err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required", nil)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, r, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// ToggleItem handles PATCH /orders/{id}/items/{index}.
func (h *OrderHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item index", nil)
		return
	}

	o, err := h.svc.ToggleItem(r.Context(), id, index)
	if err != nil {
		writeServiceError(w, r, "toggle item", err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// Dispatch handles PATCH /orders/{id}/dispatch.
func (h *OrderHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	o, err := h.svc.MarkDispatched(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "mark dispatched", err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// Ticket handles GET /orders/{id}/ticket?kind=kitchen|cashier[&type=cancel]
// and returns the ticket as a printable HTML page.
func (h *OrderHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	kind := receipt.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = receipt.Kitchen
	}
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "kind must be kitchen or cashier", nil)
		return
	}

	o, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get order", err)
		return
	}

	var page string
	if r.URL.Query().Get("type") == "cancel" {
		page, err = receipt.CancellationHTML(kind, o.OrderNumber, o.Nombre)
	} else {
		page, err = receipt.NewOrderHTML(kind, *o)
	}
	if err != nil {
		writeServiceError(w, r, "render ticket", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// PreviewTicket handles POST /orders/{id}/ticket/preview: it renders the
// modification ticket an edit to the given items would print, without
// saving anything. 204 when the kitchen would get no ticket.
func (h *OrderHandler) PreviewTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req previewTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	kind := receipt.Kind(req.Kind)
	if kind == "" {
		kind = receipt.Kitchen
	}
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "kind must be kitchen or cashier", nil)
		return
	}
	if req.Items == nil {
		writeError(w, http.StatusBadRequest, "items is required", nil)
		return
	}

	o, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get order", err)
		return
	}

	proposed := *o
	proposed.Items = req.Items
	change := order.Change{DiffResult: order.Diff(o.Items, req.Items)}

	page, ok, err := receipt.ModificationHTML(kind, proposed, change)
	if err != nil {
		writeServiceError(w, r, "render ticket", err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// --- Helpers ---

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
