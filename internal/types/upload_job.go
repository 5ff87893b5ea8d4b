package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadStatus string

const (
	UploadStatusReceived   UploadStatus = "received"
	UploadStatusQueued     UploadStatus = "queued"
	UploadStatusParsing    UploadStatus = "parsing"
	UploadStatusValidating UploadStatus = "validating"
	UploadStatusUpserting  UploadStatus = "upserting"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s UploadStatus) Terminal() bool {
	return s == UploadStatusCompleted || s == UploadStatusFailed
}

// UploadJob is the ledger entry for one ingestion attempt. It is created at
// upload time and mutated only by the ingestion pipeline afterwards; clients
// poll it by id. TotalRows stays nil until the run completes,
// ProcessedRows only ever increases.
type UploadJob struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Filename      string       `gorm:"column:filename;type:varchar(255);not null" json:"filename"`
	StoragePath   string       `gorm:"column:storage_path;type:varchar(512);not null" json:"storage_path"`
	TotalRows     *int         `gorm:"column:total_rows" json:"total_rows"`
	ProcessedRows int          `gorm:"column:processed_rows;not null;default:0" json:"processed_rows"`
	Status        UploadStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	Error         string       `gorm:"column:error;type:varchar(1024)" json:"error,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (UploadJob) TableName() string { return "upload_jobs" }

func (j *UploadJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
