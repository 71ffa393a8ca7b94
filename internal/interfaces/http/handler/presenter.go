package handler

import (
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
)

type productResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toProductResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Category:    p.Category,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func toProductResponses(products []*catalog.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

type pageResponse struct {
	Items []productResponse `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Pages int               `json:"pages"`
}

func toPageResponse(page *catalog.Page) pageResponse {
	return pageResponse{
		Items: toProductResponses(page.Items),
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Pages: page.Pages,
	}
}

type productRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type orderItemResponse struct {
	Product   productRef `json:"product"`
	Quantity  int        `json:"quantity"`
	UnitPrice float64    `json:"unitPrice"`
	Subtotal  float64    `json:"subtotal"`
}

type shippingAddressResponse struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

type orderResponse struct {
	ID              int64                   `json:"id"`
	CustomerID      string                  `json:"customerId"`
	Subtotal        float64                 `json:"subtotal"`
	Tax             float64                 `json:"tax"`
	Shipping        float64                 `json:"shipping"`
	Total           float64                 `json:"total"`
	Status          string                  `json:"status"`
	ShippingAddress shippingAddressResponse `json:"shippingAddress"`
	Items           []orderItemResponse     `json:"items"`
	CreatedAt       string                  `json:"createdAt"`
	UpdatedAt       string                  `json:"updatedAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			Product:   productRef{ID: item.ProductID, Name: item.ProductName},
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.InexactFloat64(),
			Subtotal:  item.Subtotal.InexactFloat64(),
		})
	}

	return orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Subtotal:   o.Subtotal.InexactFloat64(),
		Tax:        o.Tax.InexactFloat64(),
		Shipping:   o.Shipping.InexactFloat64(),
		Total:      o.Total.InexactFloat64(),
		Status:     string(o.Status),
		ShippingAddress: shippingAddressResponse{
			FullName:   o.ShipTo.FullName,
			Address:    o.ShipTo.Address,
			City:       o.ShipTo.City,
			PostalCode: o.ShipTo.PostalCode,
			Phone:      o.ShipTo.Phone,
		},
		Items:     items,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
		UpdatedAt: o.UpdatedAt.Format(time.RFC3339),
	}
}

func toOrderResponses(orders []*order.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}
