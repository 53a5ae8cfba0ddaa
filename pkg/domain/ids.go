package domain

import (
	"github.com/google/uuid"

	dErrors "propex/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so the compiler rejects passing a
// TransactionID where a UserID is expected.
type (
	UserID        uuid.UUID
	TransactionID uuid.UUID
	PropertyID    uuid.UUID
	StepID        uuid.UUID
	WalletID      uuid.UUID
)

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is too long")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be nil")
	}
	return parsed, nil
}

// ParseUserID validates external input and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParseTransactionID validates external input and returns a TransactionID.
func ParseTransactionID(s string) (TransactionID, error) {
	u, err := parseUUID(s, "transaction_id")
	return TransactionID(u), err
}

// ParsePropertyID validates external input and returns a PropertyID.
func ParsePropertyID(s string) (PropertyID, error) {
	u, err := parseUUID(s, "property_id")
	return PropertyID(u), err
}

// ParseStepID validates external input and returns a StepID.
func ParseStepID(s string) (StepID, error) {
	u, err := parseUUID(s, "step_id")
	return StepID(u), err
}

// ParseWalletID validates external input and returns a WalletID.
func ParseWalletID(s string) (WalletID, error) {
	u, err := parseUUID(s, "wallet_id")
	return WalletID(u), err
}

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id TransactionID) String() string { return uuid.UUID(id).String() }
func (id PropertyID) String() string    { return uuid.UUID(id).String() }
func (id StepID) String() string        { return uuid.UUID(id).String() }
func (id WalletID) String() string      { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id TransactionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PropertyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id StepID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id WalletID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id TransactionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id PropertyID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id StepID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id WalletID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }

// NewUserID, NewTransactionID etc. mint random identifiers.
func NewUserID() UserID               { return UserID(uuid.New()) }
func NewTransactionID() TransactionID { return TransactionID(uuid.New()) }
func NewPropertyID() PropertyID       { return PropertyID(uuid.New()) }
func NewStepID() StepID               { return StepID(uuid.New()) }
func NewWalletID() WalletID           { return WalletID(uuid.New()) }
