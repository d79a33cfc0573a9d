package chain

import "errors"

var (
	ErrMissingEndpoint     = errors.New("blockchain rpc endpoint not configured")
	ErrMissingContract     = errors.New("contract address not configured")
	ErrInvalidContract     = errors.New("invalid contract address")
	ErrInvalidKey          = errors.New("invalid owner private key")
	ErrMissingSigner       = errors.New("owner private key not configured")
	ErrReverted            = errors.New("transaction reverted")
	ErrTransactionNotFound = errors.New("transaction not found")
)
