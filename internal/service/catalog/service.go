// Package catalog — браузинг каталога: выборка активных товаров с фильтрами
// и список категорий. Только чтение, никаких мутаций.
package catalog

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dmikhailov/estore/internal/domain"
)

// ProductPage — страница выборки каталога.
type ProductPage struct {
	Items   []domain.Product
	Total   int
	Page    int
	PerPage int
}

// Service отдаёт данные каталога поверх ProductRepository.
type Service struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{products: products, logger: logger}
}

// ListProducts возвращает страницу активных товаров по фильтру.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) (ProductPage, error) {
	filter.Normalize()

	items, total, err := s.products.List(ctx, filter)
	if err != nil {
		return ProductPage{}, fmt.Errorf("list products: %w", err)
	}

	return ProductPage{
		Items:   items,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

// GetProduct возвращает активный товар или ErrProductNotFound.
func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.products.GetActive(ctx, id)
}

// Categories возвращает непустые категории активных товаров.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
