package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payscope/internal/domain"
	"payscope/internal/engine/auditchain"
)

// AuditService records entries into the global hash chain and verifies
// chain integrity on demand.
type AuditService struct {
	Audits AuditLogRepository
	Now    Clock
}

func NewAuditService(audits AuditLogRepository, now Clock) *AuditService {
	if now == nil {
		now = time.Now
	}
	return &AuditService{Audits: audits, Now: now}
}

// Record stamps and appends one entry. Linking and hashing happen inside
// the repository's transaction; callers only supply the payload fields.
func (s *AuditService) Record(ctx context.Context, entry domain.AuditLogEntry) (domain.AuditLogEntry, error) {
	if s.Audits == nil {
		return domain.AuditLogEntry{}, errors.New("audit repository required")
	}
	if entry.ChangedBy == "" {
		entry.ChangedBy = domain.AuditActorSystem
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.Now()
	}
	return s.Audits.Append(ctx, entry)
}

// Verify checks the whole chain. An invalid chain is reported as an
// error wrapping ErrChainVerificationFailed, carrying the first bad ID.
func (s *AuditService) Verify(ctx context.Context) (domain.ChainVerification, error) {
	entries, err := s.Audits.List(ctx, 0, 0)
	if err != nil {
		return domain.ChainVerification{}, err
	}
	return verify(entries)
}

// VerifyCompany checks the chain subsequence touching one company's
// employees. Hashes still link through the global chain, so entries from
// other companies between two of ours break the subsequence check only
// if ours were altered.
func (s *AuditService) VerifyCompany(ctx context.Context, companyID string) (domain.ChainVerification, error) {
	entries, err := s.Audits.ListByCompany(ctx, companyID)
	if err != nil {
		return domain.ChainVerification{}, err
	}
	return verifySubsequence(entries)
}

func verify(entries []domain.AuditLogEntry) (domain.ChainVerification, error) {
	result := auditchain.VerifyChain(entries)
	if !result.Valid {
		return result, fmt.Errorf("%w: entry %d", domain.ErrChainVerificationFailed, result.FailedAt)
	}
	return result, nil
}

// verifySubsequence recomputes each entry's hash from its stored
// previous hash without requiring adjacency, since the subsequence skips
// entries belonging to other companies.
func verifySubsequence(entries []domain.AuditLogEntry) (domain.ChainVerification, error) {
	for _, entry := range entries {
		expected, err := auditchain.EntryHash(entry)
		if err != nil || expected != entry.Hash {
			return domain.ChainVerification{Valid: false, FailedAt: entry.ID},
				fmt.Errorf("%w: entry %d", domain.ErrChainVerificationFailed, entry.ID)
		}
	}
	return domain.ChainVerification{Valid: true, Count: len(entries)}, nil
}
