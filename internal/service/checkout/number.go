package checkout

import (
	"crypto/rand"
	"fmt"
)

const (
	numberPrefix    = "ORD-"
	numberSuffixLen = 8
	numberAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NumberGenerator выпускает человекочитаемые номера заказов вида ORD-XXXXXXXX.
// Уникальность номера гарантирует не генератор, а уникальный индекс в
// хранилище: при коллизии оформление перегенерирует номер и повторяет попытку.
type NumberGenerator struct {
	prefix string
}

// NewNumberGenerator возвращает генератор со стандартным префиксом ORD-.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{prefix: numberPrefix}
}

// Generate возвращает новый случайный номер заказа.
func (g *NumberGenerator) Generate() (string, error) {
	buf := make([]byte, numberSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return g.prefix + string(buf), nil
}
