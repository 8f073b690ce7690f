package domain

import "time"

// GenesisHash is the previous-hash value of the first entry in the chain.
const GenesisHash = ""

// AuditActorSystem identifies entries written by background jobs rather
// than a user.
const AuditActorSystem = "system"

// AuditLogEntry is one immutable record in the global hash chain. ID is
// assigned by the store; Hash covers every other field plus PreviousHash.
type AuditLogEntry struct {
	ID           int64
	TableName    string
	ChangedBy    string
	EmployeeID   string
	OldValue     any
	NewValue     any
	Reason       string
	Timestamp    time.Time
	PreviousHash string
	Hash         string
}

// ChainVerification is the outcome of verifying an ordered chain.
// FailedAt is the ID of the first entry whose recomputed hash does not
// match its stored hash; verification stops there.
type ChainVerification struct {
	Valid    bool
	Count    int
	FailedAt int64
}
