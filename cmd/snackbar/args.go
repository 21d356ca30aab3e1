package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// parseItem reads "prod-1:2" (quantity defaults to 1).
func parseItem(raw string) (string, int, error) {
	id, qty, found := strings.Cut(strings.TrimSpace(raw), ":")
	id = strings.TrimSpace(id)
	if id == "" {
		return "", 0, fmt.Errorf("item %q: missing product id", raw)
	}
	if !found {
		return id, 1, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(qty))
	if err != nil {
		return "", 0, fmt.Errorf("item %q: quantity must be an integer", raw)
	}
	return id, n, nil
}

// parseUsage reads "ing-4:0.5".
func parseUsage(raw string) (string, decimal.Decimal, error) {
	id, qty, found := strings.Cut(strings.TrimSpace(raw), ":")
	id = strings.TrimSpace(id)
	if id == "" || !found {
		return "", decimal.Zero, fmt.Errorf("usage %q: expected <ingredient>:<quantity>", raw)
	}
	d, err := parseDecimal(qty)
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("usage %q: %w", raw, err)
	}
	return id, d, nil
}

// parseDecimal accepts both "2.50" and "2,50".
func parseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	return decimal.NewFromString(raw)
}
