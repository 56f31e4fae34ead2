package models

import "errors"

var (
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrInvalidBar        = errors.New("invalid bar (high < low)")
	ErrInvalidVolume     = errors.New("invalid volume")
	ErrEmptySeries       = errors.New("price series is empty")
	ErrNonMonotonicDates = errors.New("bar dates are not strictly increasing")
	ErrMissingColumn     = errors.New("missing indicator column")
	ErrMisalignedColumn  = errors.New("indicator column length does not match bars")
)
