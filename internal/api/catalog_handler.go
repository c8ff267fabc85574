package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	catalog CatalogService
	shop    ShopService
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogService, shop ShopService, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, shop: shop, timeout: timeout}
}

type RateDTO struct {
	Unit     string          `json:"unit"`
	Rate     decimal.Decimal `json:"rate"`
	Discount decimal.Decimal `json:"discount"`
}

type ProductDTO struct {
	ID               int64              `json:"sub_id"`
	Name             string             `json:"subName"`
	Image            string             `json:"childimg,omitempty"`
	Rates            []RateDTO          `json:"rates"`
	DefaultRate      *RateDTO           `json:"default_rate,omitempty"`
	StockStatus      domain.StockStatus `json:"stock_status,omitempty"`
	SelectedQuantity int                `json:"selected_quantity"`
}

type CategoryDTO struct {
	ID       int64        `json:"pro_id"`
	Name     string       `json:"name"`
	Image    string       `json:"img,omitempty"`
	Products []ProductDTO `json:"products"`
}

// GET /api/v1/catalog
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, h.categoryDTO(c))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": out})
}

// GET /api/v1/catalog/{category_id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(r, "category_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_category_id", "category_id must be a number")
		return
	}

	c, err := h.catalog.Category(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.categoryDTO(c))
}

func (h *CatalogHandler) categoryDTO(c domain.Category) CategoryDTO {
	dto := CategoryDTO{ID: c.ID, Name: c.Name, Image: c.Image, Products: make([]ProductDTO, 0, len(c.SubProducts))}
	for _, p := range c.SubProducts {
		pd := ProductDTO{
			ID:               p.ID,
			Name:             p.Name,
			Image:            p.Image,
			Rates:            make([]RateDTO, 0, len(p.RateEntities)),
			SelectedQuantity: h.shop.Quantity(p.ID),
		}
		for _, re := range p.RateEntities {
			pd.Rates = append(pd.Rates, RateDTO{Unit: string(re.Quantity), Rate: re.Rate, Discount: re.Discount})
		}
		if len(pd.Rates) > 0 {
			def := pd.Rates[0]
			pd.DefaultRate = &def
		}
		if s, ok := h.catalog.StockStatus(p.ID); ok {
			pd.StockStatus = s
		}
		dto.Products = append(dto.Products, pd)
	}
	return dto
}
