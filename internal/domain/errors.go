package domain

import "errors"

var (
	// ErrOfferNotFound is returned when an operation targets a house that is not listed.
	ErrOfferNotFound = errors.New("offer not found")
	// ErrInvalidPrice is returned for prices that are not finite and strictly positive.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidQuality is returned for quality bands outside [0, Q).
	ErrInvalidQuality = errors.New("invalid quality band")
	// ErrInvalidBuyer is returned for bids from NoHousehold.
	ErrInvalidBuyer = errors.New("invalid buyer")
)
