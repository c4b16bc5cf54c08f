package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/burgerboard/api/internal/order"
	"github.com/burgerboard/api/internal/service"
	"github.com/burgerboard/api/internal/webhook"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// ChatServicer defines the service methods needed by the chat pipeline endpoints.
// Satisfied by *service.OrderService; narrow interface for testability.
type ChatServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	EditOrder(ctx context.Context, req service.EditOrderRequest) (*service.EditOrderResult, error)
	DeleteOrder(ctx context.Context, orderNumber int32) (*service.DeleteOrderResult, error)
	OrderStatus(ctx context.Context, orderNumber int32) (*service.OrderStatusResult, error)
	ReprintOrder(ctx context.Context, o order.Order) []webhook.DeliveryError
}

// ChatHandler serves the endpoints called by the chat automation pipeline.
type ChatHandler struct {
	svc ChatServicer
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc ChatServicer) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// RegisterRoutes registers the chat pipeline endpoints at the router root.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/receive-order", h.ReceiveOrder)
	r.Post("/edit-order", h.EditOrder)
	r.Post("/delete-order", h.DeleteOrder)
	r.Post("/get-order-status", h.GetOrderStatus)
	r.Post("/print-order", h.PrintOrder)
}

// --- Request / Response types ---

// receiveOrderRequest accepts both intake shapes: structured "items" and
// free-text "pedido". "total" is the legacy name of "monto".
type receiveOrderRequest struct {
	Nombre         string           `json:"nombre"`
	Telefono       string           `json:"telefono"`
	DireccionEnvio string           `json:"direccion_envio"`
	MetodoPago     string           `json:"metodo_pago"`
	Monto          *decimal.Decimal `json:"monto"`
	Total          *decimal.Decimal `json:"total"`
	Items          json.RawMessage  `json:"items"`
	Pedido         json.RawMessage  `json:"pedido"`
}

type editOrderRequest struct {
	OrderNumber    flexInt          `json:"order_number"`
	Nombre         *string          `json:"nombre"`
	Telefono       *string          `json:"telefono"`
	DireccionEnvio *string          `json:"direccion_envio"`
	MetodoPago     *string          `json:"metodo_pago"`
	Monto          *decimal.Decimal `json:"monto"`
	Total          *decimal.Decimal `json:"total"`
	Items          json.RawMessage  `json:"items"`
	Pedido         json.RawMessage  `json:"pedido"`
}

type orderNumberRequest struct {
	OrderNumber flexInt `json:"order_number"`
}

type orderResponse struct {
	Success       bool                    `json:"success"`
	Order         order.Order             `json:"order"`
	WebhookErrors []webhook.DeliveryError `json:"webhookErrors,omitempty"`
}

// editOrderResponse carries the item delta only when the edit replaced items.
type editOrderResponse struct {
	Success bool        `json:"success"`
	Order   order.Order `json:"order"`
	*order.DiffResult
	WebhookErrors []webhook.DeliveryError `json:"webhookErrors,omitempty"`
}

type deleteOrderResponse struct {
	Success       bool                    `json:"success"`
	Message       string                  `json:"message"`
	OrderNumber   int32                   `json:"order_number"`
	WebhookErrors []webhook.DeliveryError `json:"webhookErrors,omitempty"`
}

type orderStatusResponse struct {
	Found          bool   `json:"found"`
	OrderNumber    int32  `json:"order_number,omitempty"`
	Status         string `json:"status,omitempty"`
	CadeteSalio    bool   `json:"cadete_salio"`
	Nombre         string `json:"nombre,omitempty"`
	DireccionEnvio string `json:"direccion_envio,omitempty"`
	Message        string `json:"message"`
}

type printOrderResponse struct {
	Success       bool                    `json:"success"`
	OrderNumber   int32                   `json:"order_number"`
	WebhookErrors []webhook.DeliveryError `json:"webhookErrors,omitempty"`
}

// --- Handlers ---

// ReceiveOrder handles POST /receive-order.
func (h *ChatHandler) ReceiveOrder(w http.ResponseWriter, r *http.Request) {
	var req receiveOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", err)
		return
	}

	input, err := itemsInput(req.Items, req.Pedido)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	monto := firstAmount(req.Monto, req.Total)
	if req.Nombre == "" || input == nil || monto == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: nombre, items or pedido, monto", nil)
		return
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		Nombre:         req.Nombre,
		Telefono:       req.Telefono,
		DireccionEnvio: req.DireccionEnvio,
		MetodoPago:     req.MetodoPago,
		Monto:          *monto,
		Input:          *input,
	})
	if err != nil {
		writeServiceError(w, r, "create order", err)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{
		Success:       true,
		Order:         result.Order,
		WebhookErrors: result.WebhookErrors,
	})
}

// EditOrder handles POST /edit-order.
func (h *ChatHandler) EditOrder(w http.ResponseWriter, r *http.Request) {
	var req editOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", err)
		return
	}
	if req.OrderNumber <= 0 {
		writeError(w, http.StatusBadRequest, "order_number is required", nil)
		return
	}

	input, err := itemsInput(req.Items, req.Pedido)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.svc.EditOrder(r.Context(), service.EditOrderRequest{
		OrderNumber:    int32(req.OrderNumber),
		Nombre:         req.Nombre,
		Telefono:       req.Telefono,
		DireccionEnvio: req.DireccionEnvio,
		MetodoPago:     req.MetodoPago,
		Monto:          firstAmount(req.Monto, req.Total),
		Input:          input,
	})
	if err != nil {
		writeServiceError(w, r, "edit order", err)
		return
	}

	resp := editOrderResponse{
		Success:       true,
		Order:         result.Order,
		WebhookErrors: result.WebhookErrors,
	}
	if input != nil {
		diff := result.Change.DiffResult
		diff.Added = nonNilItems(diff.Added)
		diff.Removed = nonNilItems(diff.Removed)
		resp.DiffResult = &diff
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteOrder handles POST /delete-order.
func (h *ChatHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	var req orderNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", err)
		return
	}
	if req.OrderNumber <= 0 {
		writeError(w, http.StatusBadRequest, "order_number is required", nil)
		return
	}

	result, err := h.svc.DeleteOrder(r.Context(), int32(req.OrderNumber))
	if err != nil {
		writeServiceError(w, r, "delete order", err)
		return
	}

	writeJSON(w, http.StatusOK, deleteOrderResponse{
		Success:       true,
		Message:       "Order deleted successfully",
		OrderNumber:   result.OrderNumber,
		WebhookErrors: result.WebhookErrors,
	})
}

// GetOrderStatus handles POST /get-order-status.
func (h *ChatHandler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", err)
		return
	}
	if req.OrderNumber <= 0 {
		writeError(w, http.StatusBadRequest, "order_number is required", nil)
		return
	}

	res, err := h.svc.OrderStatus(r.Context(), int32(req.OrderNumber))
	if err != nil {
		writeServiceError(w, r, "get order status", err)
		return
	}

	resp := orderStatusResponse{Found: res.Found, Message: res.Message}
	if res.Found {
		resp.OrderNumber = res.OrderNumber
		resp.Status = res.Status
		resp.CadeteSalio = res.CadeteSalio
		resp.Nombre = res.Nombre
		resp.DireccionEnvio = res.DireccionEnvio
	}
	writeJSON(w, http.StatusOK, resp)
}

// PrintOrder handles POST /print-order: the body is an order document
// whose new-order tickets are rendered and sent again.
func (h *ChatHandler) PrintOrder(w http.ResponseWriter, r *http.Request) {
	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", err)
		return
	}
	if o.OrderNumber <= 0 {
		writeError(w, http.StatusBadRequest, "order_number is required", nil)
		return
	}

	errs := h.svc.ReprintOrder(r.Context(), o)

	writeJSON(w, http.StatusOK, printOrderResponse{
		Success:       true,
		OrderNumber:   o.OrderNumber,
		WebhookErrors: errs,
	})
}

// --- Helpers ---

var (
	errItemsShape  = errors.New("items must be an array")
	errPedidoShape = errors.New("pedido must be a string or an array of strings")
)

// itemsInput resolves the items/pedido union. It returns nil when the body
// carries neither. Structured items win over pedido.
func itemsInput(items, pedido json.RawMessage) (*service.ItemsInput, error) {
	if present(items) {
		var structured []order.Item
		if err := json.Unmarshal(items, &structured); err != nil {
			return nil, errItemsShape
		}
		if structured == nil {
			structured = []order.Item{}
		}
		return &service.ItemsInput{Items: structured}, nil
	}

	if present(pedido) {
		var text string
		if err := json.Unmarshal(pedido, &text); err == nil {
			return &service.ItemsInput{Text: text}, nil
		}
		var lines []string
		if err := json.Unmarshal(pedido, &lines); err == nil {
			return &service.ItemsInput{Lines: lines}, nil
		}
		return nil, errPedidoShape
	}

	return nil, nil
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func firstAmount(amounts ...*decimal.Decimal) *decimal.Decimal {
	for _, a := range amounts {
		if a != nil {
			return a
		}
	}
	return nil
}

func nonNilItems(items []order.Item) []order.Item {
	if items == nil {
		return []order.Item{}
	}
	return items
}
