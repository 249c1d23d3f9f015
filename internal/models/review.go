package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review holds a client's grade for a freelancer on one project. The
// composite unique index is the authority for the one-review-per-triple
// rule; concurrent duplicates surface as gorm.ErrDuplicatedKey.
type Review struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Grade       int       `gorm:"not null" json:"grade"`
	Comment     string    `gorm:"type:text" json:"comment"`
	DateAndTime time.Time `json:"date_and_time"`

	ClientID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reviews_project_client_freelancer" json:"client_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reviews_project_client_freelancer" json:"freelancer_id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_reviews_project_client_freelancer" json:"project_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client     *User    `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Freelancer *User    `gorm:"foreignKey:FreelancerID;constraint:OnDelete:CASCADE" json:"freelancer,omitempty"`
	Project    *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
