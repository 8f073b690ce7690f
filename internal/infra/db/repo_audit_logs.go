package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"payscope/internal/domain"
	"payscope/internal/engine/auditchain"
)

// appendRetries bounds the optimistic retry loop on serialization
// conflicts between concurrent appenders.
const appendRetries = 3

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Append reads the chain tail, links and hashes the entry, and inserts
// it, all inside one serializable transaction. Two concurrent appenders
// can never both link to the same tail: the loser's transaction fails
// with a serialization conflict and is retried against the new tail.
func (r *AuditLogRepository) Append(ctx context.Context, entry domain.AuditLogEntry) (domain.AuditLogEntry, error) {
	if r.db == nil {
		return domain.AuditLogEntry{}, errDBUnavailable
	}
	if entry.TableName == "" || entry.ChangedBy == "" {
		return domain.AuditLogEntry{}, errors.New("audit entry missing table_name or changed_by")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	// The hash covers the timestamp at millisecond precision; store the
	// same instant that was hashed.
	entry.Timestamp = entry.Timestamp.UTC().Truncate(time.Millisecond)

	var out domain.AuditLogEntry
	var err error
	for attempt := 0; attempt < appendRetries; attempt++ {
		out, err = r.appendOnce(ctx, entry)
		if err == nil || !isSerializationFailure(err) {
			return out, err
		}
	}
	return domain.AuditLogEntry{}, err
}

func (r *AuditLogRepository) appendOnce(ctx context.Context, entry domain.AuditLogEntry) (domain.AuditLogEntry, error) {
	var out domain.AuditLogEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tail, err := chainTail(tx)
		if err != nil {
			return err
		}
		entry.PreviousHash = tail

		hash, err := auditchain.EntryHash(entry)
		if err != nil {
			return err
		}
		entry.Hash = hash

		model, err := auditLogModelFromDomain(entry)
		if err != nil {
			return err
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		entry.ID = model.ID
		out = entry
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return domain.AuditLogEntry{}, err
	}
	return out, nil
}

// chainTail returns the hash of the latest entry, locking it against
// concurrent appenders for the rest of the transaction.
func chainTail(tx *gorm.DB) (string, error) {
	var tail struct{ Hash string }
	err := tx.Raw(
		"SELECT hash FROM audit_logs ORDER BY timestamp DESC, id DESC LIMIT 1 FOR UPDATE",
	).Scan(&tail).Error
	if err != nil {
		return "", err
	}
	if tail.Hash == "" {
		return domain.GenesisHash, nil
	}
	return tail.Hash, nil
}

// List returns entries in chain order, paginated. A non-positive limit
// returns everything from offset on.
func (r *AuditLogRepository) List(ctx context.Context, limit, offset int) ([]domain.AuditLogEntry, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).Order("timestamp ASC, id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []AuditLogModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	return auditLogEntriesFromModels(models), nil
}

// ListByCompany returns the chain subsequence touching a company's
// employees, in chain order.
func (r *AuditLogRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.AuditLogEntry, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AuditLogModel
	err := r.db.WithContext(ctx).
		Where("employee_id IN (SELECT id FROM employees WHERE company_id = ?)", companyID).
		Order("timestamp ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return auditLogEntriesFromModels(models), nil
}

func auditLogModelFromDomain(entry domain.AuditLogEntry) (AuditLogModel, error) {
	oldJSON, err := jsonBytes(entry.OldValue)
	if err != nil {
		return AuditLogModel{}, err
	}
	newJSON, err := jsonBytes(entry.NewValue)
	if err != nil {
		return AuditLogModel{}, err
	}
	return AuditLogModel{
		ID:           entry.ID,
		TargetTable:  entry.TableName,
		ChangedBy:    entry.ChangedBy,
		EmployeeID:   stringPtrIfNotEmpty(entry.EmployeeID),
		OldValue:     oldJSON,
		NewValue:     newJSON,
		Reason:       stringPtrIfNotEmpty(entry.Reason),
		Timestamp:    entry.Timestamp.UTC(),
		PreviousHash: entry.PreviousHash,
		Hash:         entry.Hash,
	}, nil
}

func auditLogEntriesFromModels(models []AuditLogModel) []domain.AuditLogEntry {
	out := make([]domain.AuditLogEntry, 0, len(models))
	for _, model := range models {
		out = append(out, domain.AuditLogEntry{
			ID:           model.ID,
			TableName:    model.TargetTable,
			ChangedBy:    model.ChangedBy,
			EmployeeID:   stringValue(model.EmployeeID),
			OldValue:     jsonValue(model.OldValue),
			NewValue:     jsonValue(model.NewValue),
			Reason:       stringValue(model.Reason),
			Timestamp:    model.Timestamp.UTC(),
			PreviousHash: model.PreviousHash,
			Hash:         model.Hash,
		})
	}
	return out
}
