package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/dmikhailov/estore/internal/domain"
)

// GetActive возвращает активный товар или ErrProductNotFound.
func (s *Store) GetActive(_ context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok || !p.IsActive {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

// List возвращает страницу активных товаров по фильтру и общее число подходящих.
func (s *Store) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	filter.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !matchesSearch(p, filter.Search) {
			continue
		}
		if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	return paginate(matched, filter.Page, filter.PerPage), total, nil
}

// Categories возвращает отсортированные непустые категории активных товаров.
func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, p := range s.products {
		if p.IsActive && p.Category != "" {
			seen[p.Category] = true
		}
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

func matchesSearch(p domain.Product, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}

func paginate[T any](items []T, page, perPage int) []T {
	offset := (page - 1) * perPage
	if offset >= len(items) {
		return []T{}
	}
	end := offset + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var _ domain.ProductRepository = (*Store)(nil)
