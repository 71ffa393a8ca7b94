package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	app "storefront/internal/application/order"
	"storefront/internal/domain/order"
	"storefront/internal/interfaces/http/middleware"
)

type OrderHandler struct {
	svc *app.Service
}

func NewOrderHandler(svc *app.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type orderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type shippingAddressRequest struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

type createOrderRequest struct {
	Items           []orderItemRequest      `json:"items"`
	ShippingAddress *shippingAddressRequest `json:"shippingAddress"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON payload")
		return
	}

	cmd := app.CreateOrderCommand{
		CustomerID: middleware.FromContext(c).CustomerID,
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, app.ItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	if req.ShippingAddress != nil {
		cmd.ShipTo = order.ShippingAddress{
			FullName:   req.ShippingAddress.FullName,
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Phone:      req.ShippingAddress.Phone,
		}
	}

	created, err := h.svc.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, toOrderResponse(created), "order created successfully")
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.svc.ListOrders(c.Request.Context(), middleware.FromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) Show(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
		return
	}

	found, err := h.svc.GetOrder(c.Request.Context(), id, middleware.FromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toOrderResponse(found))
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
		return
	}

	completed, err := h.svc.Checkout(c.Request.Context(), id, middleware.FromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, toOrderResponse(completed), "checkout completed successfully, payment has been processed")
}
