package errs

import "errors"

// Sentinel errors shared between the cart, reconciliation and payment layers
var (
	// Cart errors
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCartStoreClosed   = errors.New("cart store closed")

	// Payment errors
	ErrOrderReferenceRequired = errors.New("order id or order code required")

	// Operation errors
	ErrBackendOperationFailed = errors.New("backend operation failed")
	ErrPersistenceFailed      = errors.New("cart persistence failed")
)
