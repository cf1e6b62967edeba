package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/model"
	"github.com/yaojiejia/portfolioAnalysis/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of users created by UserBuilder unless overridden.
const DefaultPassword = "correct-horse-battery"

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	// Simple creation with defaults
//	user := testutil.NewUser().Build(t, db)
//
//	// Customized user
//	user := testutil.NewUser().
//	    WithEmail("jane@example.com").
//	    WithPassword("s3cret-pass").
//	    Build(t, db)
type UserBuilder struct {
	ID       string
	Username string
	Email    string
	Password string
}

// NewUser creates a UserBuilder with unique defaults.
func NewUser() *UserBuilder {
	suffix := strings.ToLower(randomAlphanumeric(8))
	return &UserBuilder{
		ID:       MakeID(),
		Username: "user_" + suffix,
		Email:    "user_" + suffix + "@example.com",
		Password: DefaultPassword,
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.Username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.Email = email
	return b
}

// WithPassword sets the plain-text password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.Password = password
	return b
}

// Build creates the user in the database. The password is hashed with the
// minimum bcrypt cost to keep tests fast.
func (b *UserBuilder) Build(t *testing.T, db *sqlx.DB) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(b.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := model.User{
		ID:           b.ID,
		Username:     b.Username,
		Email:        b.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := repository.NewUserRepository(db).InsertUser(context.Background(), &user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	return user
}

// TransactionBuilder provides a fluent interface for creating transactions
type TransactionBuilder struct {
	ID       string
	UserID   string
	Symbol   string
	Sector   string
	Type     string
	Price    decimal.Decimal
	Quantity int64
	Date     time.Time
}

// NewTransaction creates a TransactionBuilder with defaults: a buy of 10 TEST at 100.
func NewTransaction(userID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:       MakeID(),
		UserID:   userID,
		Symbol:   "TEST",
		Sector:   "Technology",
		Type:     model.TransactionTypeBuy,
		Price:    decimal.NewFromInt(100),
		Quantity: 10,
		Date:     time.Now().UTC(),
	}
}

// WithID sets a custom ID
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithSymbol sets the symbol
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// WithSector sets the sector
func (b *TransactionBuilder) WithSector(sector string) *TransactionBuilder {
	b.Sector = sector
	return b
}

// Sell marks the transaction as a sell
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = model.TransactionTypeSell
	return b
}

// WithType sets the transaction type
func (b *TransactionBuilder) WithType(txType string) *TransactionBuilder {
	b.Type = txType
	return b
}

// WithPrice sets the price per share
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.Price = decimal.NewFromFloat(price)
	return b
}

// WithQuantity sets the number of shares
func (b *TransactionBuilder) WithQuantity(quantity int64) *TransactionBuilder {
	b.Quantity = quantity
	return b
}

// WithDate sets the transaction date
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// Model returns the transaction without storing it.
func (b *TransactionBuilder) Model() model.Transaction {
	return model.Transaction{
		ID:         b.ID,
		UserID:     b.UserID,
		Symbol:     b.Symbol,
		Sector:     b.Sector,
		Type:       b.Type,
		Price:      b.Price,
		Quantity:   b.Quantity,
		TotalValue: b.Price.Mul(decimal.NewFromInt(b.Quantity)),
		Date:       b.Date.UTC(),
		CreatedAt:  b.Date.UTC(),
	}
}

// Build creates the transaction in the database
func (b *TransactionBuilder) Build(t *testing.T, db *sqlx.DB) model.Transaction {
	t.Helper()

	transaction := b.Model()
	if err := repository.NewTransactionRepository(db).InsertTransaction(context.Background(), &transaction); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	return transaction
}
