package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const OfferStatusPending = "pending"

type Offer struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Price       float64   `gorm:"not null" json:"price"`
	Comment     string    `gorm:"type:text" json:"comment"`
	Status      string    `gorm:"size:50;default:'pending'" json:"status"`
	DateAndTime time.Time `json:"date_and_time"`

	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index" json:"freelancer_id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Freelancer *User    `gorm:"foreignKey:FreelancerID;constraint:OnDelete:CASCADE" json:"freelancer,omitempty"`
	Project    *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
}

// OwnerID satisfies policy.Resource; offers belong to their freelancer.
func (o *Offer) OwnerID() uuid.UUID { return o.FreelancerID }

func (o *Offer) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}
