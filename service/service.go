// Package service implements the application use cases on top of the
// repository layer. Services own transaction boundaries: multi-step
// writes run inside a single bun transaction via repository rebinding,
// single-step operations go straight through the bound repositories.
package service

// Error codes returned by the services.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserInactive       = "USER_INACTIVE"
	CodeUserNotFound       = "USER_NOT_FOUND"

	CodeEmptyOrder        = "EMPTY_ORDER"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeOrderNotFound     = "ORDER_NOT_FOUND"
)
