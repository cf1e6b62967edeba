package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that a user with the given ID or email does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist
	// or belongs to another user.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrNoPriceData indicates the market data source returned no rows for the requested period.
	ErrNoPriceData = errors.New("no data available for the given period")

	// ErrPositionNotFound indicates the user holds no shares of a symbol.
	ErrPositionNotFound = errors.New("No shares found for this stock")

	// ErrGuestEntryNotFound indicates the guest portfolio has no entry at the given index.
	ErrGuestEntryNotFound = errors.New("portfolio entry not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientShares indicates that a sell cannot be completed
	// because the position does not hold enough shares.
	ErrInsufficientShares = errors.New("Not enough shares to sell")

	// ErrInvalidAction indicates a trade action other than buy or sell.
	ErrInvalidAction = errors.New("invalid actions")

	// ErrInvalidPeriod indicates an unsupported history period.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrMalformedTransaction indicates a stored transaction that cannot be aggregated
	// (unknown type or non-positive quantity).
	ErrMalformedTransaction = errors.New("malformed transaction")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Validation errors for required fields
	ErrInvalidSymbol = errors.New("Stock symbol is required")
)

// Authentication errors.
var (
	// ErrUserExists indicates a signup with a username or email already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("Invalid credentials")

	// ErrInvalidToken indicates a token that failed parsing, signature, type or expiry checks.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrMissingToken indicates no token was presented.
	ErrMissingToken = errors.New("no token provided")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToRetrievePositions    = errors.New("failed to retrieve positions")
	ErrFailedToGetPortfolioSummary  = errors.New("failed to get portfolio summary")
	ErrFailedToFetchStock           = errors.New("error fetching the stock info")
	ErrFailedToTrade                = errors.New("failed to complete transaction")
	ErrFailedToRetrieveUser         = errors.New("failed to retrieve user")
	ErrFailedToRegister             = errors.New("failed to register user")
	ErrFailedToIssueToken           = errors.New("failed to issue token")
	ErrFailedToLoadGuestPortfolio   = errors.New("failed to load portfolio")
	ErrFailedToSaveGuestPortfolio   = errors.New("failed to save portfolio")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)
