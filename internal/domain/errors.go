package domain

import "errors"

// epsilon is the tolerance used everywhere a capacity or sum comparison is
// made against a float64 limit.
const epsilon = 1e-6

var (
	ErrWeightExceeded    = errors.New("truck weight capacity exceeded")
	ErrVolumeExceeded    = errors.New("truck volume capacity exceeded")
	ErrPalletsExceeded   = errors.New("truck max pallets exceeded")
	ErrPositionsExceeded = errors.New("truck max floor positions exceeded")
	ErrHeightExceeded    = errors.New("fragment height exceeds truck interior height")

	ErrInvalidOrder = errors.New("invalid order")
	ErrInvalidSKU   = errors.New("invalid sku")
	ErrInvalidTruck = errors.New("invalid truck")
)
