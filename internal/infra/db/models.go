package db

import "time"

type AuditLogModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	TargetTable  string    `gorm:"column:table_name;not null"`
	ChangedBy    string    `gorm:"not null"`
	EmployeeID   *string   `gorm:"type:uuid;index"`
	OldValue     []byte    `gorm:"type:jsonb"`
	NewValue     []byte    `gorm:"type:jsonb"`
	Reason       *string
	Timestamp    time.Time `gorm:"not null;index"`
	PreviousHash string    `gorm:"not null"`
	Hash         string    `gorm:"not null"`
}

func (AuditLogModel) TableName() string { return "audit_logs" }

type CompanyModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	Name       string `gorm:"not null"`
	Plan       string `gorm:"not null;default:starter"`
	ConfigJSON []byte `gorm:"column:config_json;type:jsonb"`
	// ConfigRev counts every write to ConfigJSON, including ones that do
	// not bump the semantic config version (proposals, rejections). It is
	// the optimistic-concurrency token for config mutations.
	ConfigRev int64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CompanyModel) TableName() string { return "companies" }

type EmployeeModel struct {
	ID              string  `gorm:"type:uuid;primaryKey"`
	CompanyID       string  `gorm:"type:uuid;not null;index"`
	Name            string
	Role            string
	Department      string
	ManagerID       *string `gorm:"type:uuid"`
	SalaryEncrypted *string
	MissedCheckins  int
	Notes           string
	TenureMonths    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (EmployeeModel) TableName() string { return "employees" }

type ScoreModel struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	EmployeeID      string `gorm:"type:uuid;not null;uniqueIndex:idx_scores_employee_month"`
	Month           string `gorm:"not null;uniqueIndex:idx_scores_employee_month"`
	ComponentValues []byte `gorm:"type:jsonb"`
	FinalScore      float64
	FormulaVersion  int
	CreatedAt       time.Time
}

func (ScoreModel) TableName() string { return "scores" }

type RiskFlagModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	EmployeeID  string `gorm:"type:uuid;not null;index"`
	Reason      string `gorm:"not null"`
	TriggeredBy string
	Resolved    bool `gorm:"not null;default:false"`
	Severity    string
	CreatedAt   time.Time
}

func (RiskFlagModel) TableName() string { return "flight_risk_flags" }

type PeerFeedbackModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	EmployeeID string `gorm:"type:uuid;not null;index"`
	AuthorID   string `gorm:"type:uuid"`
	Rating     float64
	Comment    string
	CreatedAt  time.Time `gorm:"index"`
}

func (PeerFeedbackModel) TableName() string { return "peer_feedback" }
