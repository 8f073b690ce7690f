package db

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"payscope/internal/config"
)

var errDBUnavailable = errors.New("database unavailable")

// Store owns the gorm handle; repositories hang off it.
type Store struct {
	DB *gorm.DB
}

func NewStore(cfg *config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		return nil, errors.New("postgres_dsn is required")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{DB: gdb}, nil
}

func (s *Store) AuditLogs() *AuditLogRepository        { return NewAuditLogRepository(s.DB) }
func (s *Store) Companies() *CompanyRepository         { return NewCompanyRepository(s.DB) }
func (s *Store) Employees() *EmployeeRepository        { return NewEmployeeRepository(s.DB) }
func (s *Store) Scores() *ScoreRepository              { return NewScoreRepository(s.DB) }
func (s *Store) RiskFlags() *RiskFlagRepository        { return NewRiskFlagRepository(s.DB) }
func (s *Store) PeerFeedback() *PeerFeedbackRepository { return NewPeerFeedbackRepository(s.DB) }
