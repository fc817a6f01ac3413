package domain

import "errors"

// Sentinel errors for the trading core. Public manager operations report
// these through the log and collapse them to a boolean result; the handler
// layer maps them to HTTP status codes.
var (
	ErrInvalidConfig    = errors.New("invalid_trading_configuration")
	ErrNotRunning       = errors.New("trading_not_running")
	ErrPoolExhausted    = errors.New("pool_exhausted")
	ErrTransactionOpen  = errors.New("transaction_already_open")
	ErrNoTransaction    = errors.New("no_active_transaction")
	ErrNotPending       = errors.New("transaction_not_pending")
	ErrDuplicateOrder   = errors.New("duplicate_order_id")
	ErrEmptySymbol      = errors.New("symbol_cannot_be_empty")
	ErrSymbolLimit      = errors.New("symbol_limit_reached")
	ErrBufferSize       = errors.New("buffer_size_mismatch")
	ErrForeignNode      = errors.New("node_not_owned_by_pool")
	ErrInvalidOwner     = errors.New("owner_id_required")
	ErrOperationAborted = errors.New("operation_aborted")
)

// ValidationError represents an input validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
