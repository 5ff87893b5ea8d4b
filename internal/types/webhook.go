package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Webhook is a subscription: POST payloads for Event to TargetURL with the
// configured extra headers.
type Webhook struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;type:varchar(120);not null" json:"name"`
	TargetURL string         `gorm:"column:target_url;type:varchar(512);not null" json:"target_url"`
	Event     string         `gorm:"column:event;type:varchar(64);not null;index" json:"event"`
	Headers   datatypes.JSON `gorm:"column:headers;type:jsonb" json:"headers"`
	IsEnabled bool           `gorm:"column:is_enabled;not null;default:true" json:"is_enabled"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Webhook) TableName() string { return "webhooks" }

func (w *Webhook) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

const (
	DeliveryStatusSuccess = "success"
	DeliveryStatusFailed  = "failed"
)

// WebhookDelivery is the audit record of one delivery attempt.
type WebhookDelivery struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WebhookID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"webhook_id"`
	Webhook        *Webhook       `gorm:"constraint:OnDelete:CASCADE;foreignKey:WebhookID;references:ID" json:"-"`
	Event          string         `gorm:"column:event;type:varchar(64);not null" json:"event"`
	Payload        datatypes.JSON `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	ResponseCode   *int           `gorm:"column:response_code" json:"response_code"`
	ResponseTimeMs *int           `gorm:"column:response_time_ms" json:"response_time_ms"`
	ResponseBody   string         `gorm:"column:response_body;type:text" json:"response_body,omitempty"`
	Status         string         `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (WebhookDelivery) TableName() string { return "webhook_delivery_logs" }

func (d *WebhookDelivery) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
