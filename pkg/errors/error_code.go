package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidType          ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeInvalidRange         ErrorCode = 105

	// Composition/data errors (200-299)
	ErrCodeMalformedComposition ErrorCode = 200
	ErrCodeFieldNotFound        ErrorCode = 201
	ErrCodeValueTypeMismatch    ErrorCode = 202
	ErrCodeResourceUnavailable  ErrorCode = 203
	ErrCodeQueryFailed          ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound    ErrorCode = 300
	ErrCodeIndicatorCalculation ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyNotFound          ErrorCode = 400
	ErrCodeStrategyRuntimeError      ErrorCode = 401
	ErrCodeStrategyAlreadyRegistered ErrorCode = 402

	// Backtest errors (500-599)
	ErrCodeBacktestEnded      ErrorCode = 500
	ErrCodeBacktestFailed     ErrorCode = 501
	ErrCodeBacktestConfigNil  ErrorCode = 502
	ErrCodeBacktestNoStrategy ErrorCode = 503

	// Optimization errors (600-699)
	ErrCodeOptimizationFailed   ErrorCode = 600
	ErrCodeNoParameters         ErrorCode = 601
	ErrCodeParameterKindMissing ErrorCode = 602

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeTruncatedCandleFile   ErrorCode = 703
	ErrCodeCandleIndexOutOfRange ErrorCode = 704
)
