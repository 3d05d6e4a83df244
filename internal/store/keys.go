package store

import "strings"

// Key-naming scheme:
//
//	credentials           ordered credential record set (global)
//	session               identity of the active session (global)
//	ledger/<identity id>  ledger snapshot of one identity
const (
	KeyCredentials = "credentials"
	KeySession     = "session"

	ledgerPrefix = "ledger/"
)

// LedgerKey returns the snapshot key for an identity.
func LedgerKey(identityID string) string {
	return ledgerPrefix + identityID
}

// IdentityFromLedgerKey reverses LedgerKey.
func IdentityFromLedgerKey(key string) (string, bool) {
	id, ok := strings.CutPrefix(key, ledgerPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
