package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Venue transport errors
	CodeTransportError:        "Venue transport error",
	CodeWebSocketReconnecting: "WebSocket reconnecting",
	CodeWebSocketClosed:       "WebSocket connection closed",
	CodeWebSocketSendError:    "Failed to send WebSocket message",

	// Venue auth errors
	CodeAuthError: "Venue authentication failed",

	// Decode errors
	CodeDecodeError: "Failed to decode venue message",

	// Sequence gap
	CodeSequenceGap: "Orderbook sequence gap detected",

	// Coordination errors
	CodeCoordinationTimeout: "Coordination operation timed out",
	CodeCoordinationNacked:  "Coordination operation was rejected by a component",

	// Broadcast errors
	CodeClientSendError: "Failed to send to client, disconnecting",

	// Arbitrage evaluation errors
	CodeSpreadCalculationError: "Spread calculation error",
	CodeInvalidOrderbook:       "Invalid orderbook data",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
