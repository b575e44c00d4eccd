package entities

import "github.com/mr-tron/base58"

// Solana address length bounds (base58-encoded 32-byte public key).
const (
	MinWalletLength = 32
	MaxWalletLength = 44
)

// IsValidWallet reports whether addr looks like a Solana wallet address.
func IsValidWallet(addr string) bool {
	if len(addr) < MinWalletLength || len(addr) > MaxWalletLength {
		return false
	}
	if _, err := base58.Decode(addr); err != nil {
		return false
	}
	return true
}
