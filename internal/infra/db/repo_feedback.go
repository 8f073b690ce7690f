package db

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type PeerFeedbackRepository struct {
	db *gorm.DB
}

func NewPeerFeedbackRepository(db *gorm.DB) *PeerFeedbackRepository {
	return &PeerFeedbackRepository{db: db}
}

// AverageForWindow returns the mean peer-feedback rating for an
// employee inside [from, to). Zero means no feedback in the window; the
// risk engine treats that as neutral, not as a bad score.
func (r *PeerFeedbackRepository) AverageForWindow(ctx context.Context, employeeID string, from, to time.Time) (float64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var avg struct{ Avg float64 }
	err := r.db.WithContext(ctx).
		Raw("SELECT COALESCE(AVG(rating), 0) AS avg FROM peer_feedback WHERE employee_id = ? AND created_at >= ? AND created_at < ?",
			employeeID, from, to).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg.Avg, nil
}

// Add records one peer rating.
func (r *PeerFeedbackRepository) Add(ctx context.Context, employeeID, authorID string, rating float64, comment string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := PeerFeedbackModel{
		EmployeeID: employeeID,
		AuthorID:   authorID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}
