package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmikhailov/estore/internal/domain"
)

func TestErrorPredicates(t *testing.T) {
	stockErr := &domain.InsufficientStockError{ProductID: "p1", Requested: 10, Available: 5}
	unavailableErr := &domain.ProductUnavailableError{ProductID: "p2"}
	validationErr := &domain.ValidationError{Fields: map[string]string{"items": "required"}}

	cases := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"insufficient stock direct", stockErr, domain.IsInsufficientStock, true},
		{"insufficient stock wrapped", fmt.Errorf("checkout: %w", stockErr), domain.IsInsufficientStock, true},
		{"insufficient stock mismatch", unavailableErr, domain.IsInsufficientStock, false},
		{"unavailable direct", unavailableErr, domain.IsProductUnavailable, true},
		{"unavailable wrapped", fmt.Errorf("checkout: %w", unavailableErr), domain.IsProductUnavailable, true},
		{"validation direct", validationErr, domain.IsValidation, true},
		{"validation mismatch", errors.New("boom"), domain.IsValidation, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.pred(tc.err); got != tc.want {
				t.Fatalf("predicate returned %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &domain.InsufficientStockError{ProductID: "p1", Requested: 10, Available: 5}
	want := "insufficient stock for product p1: requested 10, available 5"
	if err.Error() != want {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestValidationErrorMessageSorted(t *testing.T) {
	err := &domain.ValidationError{Fields: map[string]string{
		"shipping_address": "required",
		"customer_email":   "invalid",
	}}
	want := "validation failed: customer_email: invalid; shipping_address: required"
	if err.Error() != want {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
