package ledger

import "errors"

// Rejections returned by Adjust. The ledger passed in is returned untouched.
var (
	ErrStockExceeded  = errors.New("sale would exceed starting stock")
	ErrNegativeSale   = errors.New("sale count cannot go below zero")
	ErrUnknownFlavor  = errors.New("unknown flavor")
	ErrUnknownChannel = errors.New("unknown payment channel")
)

// Errors returned when a stock level cannot back a ledger.
var (
	ErrIncompleteStock = errors.New("stock does not cover every flavor")
	ErrNegativeStock   = errors.New("stock quantity cannot be negative")
	ErrStockTooLarge   = errors.New("stock quantity exceeds the per-flavor limit")
	ErrIncompleteSales = errors.New("sales do not cover every flavor")
)
