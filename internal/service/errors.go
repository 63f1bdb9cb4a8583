package service

import "errors"

var (
	// ErrEmptyFilter is returned when the city/category filter matches
	// no transactions.
	ErrEmptyFilter = errors.New("filter matches no transactions")

	// ErrInsufficientData is returned when the monthly series is too
	// short to split into a training prefix and a non-empty holdout.
	ErrInsufficientData = errors.New("insufficient data for requested holdout")

	// ErrNoOverlap is returned when no holdout date has a matching
	// forecast date, leaving the error metric undefined.
	ErrNoOverlap = errors.New("no overlapping dates between holdout and forecast")
)
