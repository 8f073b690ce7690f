package auditchain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"payscope/internal/domain"
)

// timestampLayout matches the millisecond-precision instants stored on
// audit entries. Entries are always stamped in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// ComputeHash links a payload to its predecessor:
// hex(sha256(previousHash + "|" + canonicalize(payload))).
func ComputeHash(previousHash string, payload any) (string, error) {
	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(previousHash + "|" + canonical))
	return hex.EncodeToString(sum[:]), nil
}

// EntryHash computes the chain hash of an entry from its stored
// previous hash and every field except Hash itself.
func EntryHash(entry domain.AuditLogEntry) (string, error) {
	return ComputeHash(entry.PreviousHash, entryPayload(entry))
}

// entryPayload is the hashed view of an entry. The ID is excluded: it is
// store-assigned and unknown at hash time.
func entryPayload(entry domain.AuditLogEntry) map[string]any {
	return map[string]any{
		"table_name":    entry.TableName,
		"changed_by":    entry.ChangedBy,
		"employee_id":   entry.EmployeeID,
		"old_value":     entry.OldValue,
		"new_value":     entry.NewValue,
		"reason":        entry.Reason,
		"previous_hash": entry.PreviousHash,
		"timestamp":     FormatTimestamp(entry.Timestamp),
	}
}

// FormatTimestamp renders an instant the way it is hashed. Callers that
// stamp entries must go through this so recomputation round-trips.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// VerifyChain recomputes every entry's hash in timestamp order (ID
// breaks ties) and stops at the first mismatch. A mismatch means the
// entry was altered after insertion or the chain was reordered; trust in
// that entry and everything after it is gone.
func VerifyChain(entries []domain.AuditLogEntry) domain.ChainVerification {
	sorted := make([]domain.AuditLogEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	for _, entry := range sorted {
		expected, err := EntryHash(entry)
		if err != nil || expected != entry.Hash {
			return domain.ChainVerification{Valid: false, FailedAt: entry.ID}
		}
	}
	return domain.ChainVerification{Valid: true, Count: len(sorted)}
}
