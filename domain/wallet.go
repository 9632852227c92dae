package domain

import (
	"github.com/shopspring/decimal"
)

const (
	EventTypeWalletCreated    = "wallet_created"
	EventTypeWalletRenamed    = "wallet_renamed"
	EventTypeWalletArchived   = "wallet_archived"
	EventTypeWalletUnarchived = "wallet_unarchived"
)

const (
	WalletTypeRegular = "REGULAR"
	WalletTypeSavings = "SAVINGS"
)

type WalletCreated struct {
	WalletID       int64           `json:"wallet_id"`
	AccountID      int64           `json:"account_id"`
	Title          string          `json:"title"`
	Currency       string          `json:"currency"`
	WalletType     string          `json:"wallet_type,omitzero"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CreatedAt      Timestamp       `json:"created_at"`
}

// DecodeWalletCreated defaults wallet_type to REGULAR for payloads written
// before the field existed.
func DecodeWalletCreated(payload []byte) (WalletCreated, error) {
	p, err := decodePayload[WalletCreated](payload)
	if err != nil {
		return WalletCreated{}, err
	}

	if p.WalletType == "" {
		p.WalletType = WalletTypeRegular
	}

	return p, nil
}

type WalletRenamed struct {
	WalletID int64  `json:"wallet_id"`
	Title    string `json:"title"`
}

func DecodeWalletRenamed(payload []byte) (WalletRenamed, error) {
	return decodePayload[WalletRenamed](payload)
}

type WalletArchived struct {
	WalletID int64 `json:"wallet_id"`
}

func DecodeWalletArchived(payload []byte) (WalletArchived, error) {
	return decodePayload[WalletArchived](payload)
}
