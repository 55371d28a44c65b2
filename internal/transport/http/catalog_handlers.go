package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/dmikhailov/estore/internal/domain"
	"github.com/dmikhailov/estore/internal/service/catalog"
)

type catalogHandlers struct {
	catalog *catalog.Service
	logger  *log.Entry
}

func (h *catalogHandlers) listProducts(c *gin.Context) {
	filter, err := parseProductFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	page, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	items := make([]productView, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, toProductView(p))
	}
	respondData(c, http.StatusOK, productPageView{
		Items:   items,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
	})
}

func (h *catalogHandlers) getProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toProductView(product))
}

func (h *catalogHandlers) listCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, categories)
}

func parseProductFilter(c *gin.Context) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
	}

	var err error
	if filter.MinPrice, err = parseDecimalQuery(c, "min_price"); err != nil {
		return domain.ProductFilter{}, err
	}
	if filter.MaxPrice, err = parseDecimalQuery(c, "max_price"); err != nil {
		return domain.ProductFilter{}, err
	}
	if filter.Page, err = parseIntQuery(c, "page"); err != nil {
		return domain.ProductFilter{}, err
	}
	if filter.PerPage, err = parseIntQuery(c, "per_page"); err != nil {
		return domain.ProductFilter{}, err
	}

	return filter, nil
}

func parseDecimalQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{
			name: "must be a decimal number",
		}}
	}
	return &d, nil
}

func parseIntQuery(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Fields: map[string]string{
			name: "must be an integer",
		}}
	}
	return n, nil
}
