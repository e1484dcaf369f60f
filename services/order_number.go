package services

import (
	"crypto/rand"
	"fmt"
)

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderNumber produces a short human-readable order number like
// ORD-7KQ2M9XCV4. Ten characters over a 32-symbol alphabet gives enough
// entropy that collisions are handled by retrying the insert, not prevented
// up front.
func GenerateOrderNumber() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return "ORD-" + string(buf), nil
}
