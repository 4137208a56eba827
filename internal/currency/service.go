// Package currency implements the Currency Normalizer: conversion between
// ISO 4217 codes with a process-local, TTL-fresh cache and stale-fallback
// on oracle failure.
package currency

import (
	"context"
	"math"
	"time"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/pkg/logger"
)

// Supported is the 28-code set this normalizer will convert between.
var Supported = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "AUD": true,
	"CAD": true, "CHF": true, "CNY": true, "INR": true, "MXN": true,
	"BRL": true, "ZAR": true, "SGD": true, "HKD": true, "SEK": true,
	"NOK": true, "DKK": true, "PLN": true, "THB": true, "MYR": true,
	"IDR": true, "PHP": true, "KRW": true, "NZD": true, "TRY": true,
	"RUB": true, "AED": true, "SAR": true,
}

// Normalizer converts an amount from one currency to another.
type Normalizer interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

type normalizer struct {
	cache  *Cache
	oracle *Oracle
}

func NewNormalizer(cache *Cache, oracle *Oracle) Normalizer {
	return &normalizer{cache: cache, oracle: oracle}
}

func (n *normalizer) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	if amount <= 0 {
		return 0, internal.NewValidationError("amount must be strictly positive", internal.ErrCodeInvalidAmount)
	}
	if !Supported[to] {
		return 0, internal.ErrCurrencyUnsupported
	}
	if from == to {
		return round2(amount), nil
	}
	if !Supported[from] {
		return 0, internal.ErrCurrencyUnsupported
	}

	rate, fresh, found := n.cache.Lookup(from, to)
	if found && fresh {
		return round2(amount * rate), nil
	}

	rates, err := n.oracle.FetchRates(ctx, from)
	if err == nil {
		if r, ok := rates[to]; ok {
			n.cache.Store(from, rates, time.Now())
			return round2(amount * r), nil
		}
		logger.From(ctx).Warn("oracle response missing target code", "from", from, "to", to)
		err = internal.ErrCurrencyUnsupported
	}

	logger.From(ctx).Warn("exchange rate oracle unavailable, checking stale cache", "from", from, "to", to, "error", err)

	if found {
		return round2(amount * rate), nil
	}
	return 0, internal.ErrCurrencyUnavailable
}

// round2 rounds half-away-from-zero to 2 decimal places, per spec.
func round2(v float64) float64 {
	if v < 0 {
		return -round2(-v)
	}
	return math.Floor(v*100+0.5) / 100
}
