package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"size:100;not null" json:"name"`
	Email string    `gorm:"size:150;uniqueIndex;not null" json:"email"`

	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"type:varchar(20);not null;index" json:"role"`
	Status   Status `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	Description string `gorm:"type:text" json:"description"`
	Skills      string `gorm:"type:text" json:"skills"`
	ImageURL    string `gorm:"size:255" json:"image_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// users own projects as clients and offers as freelancers. The cascade
	// has to sit on these has-many tags: when both sides declare the
	// relation, the parent side is the one GORM builds the constraint from.
	Projects []Project `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
	Offers   []Offer   `gorm:"foreignKey:FreelancerID;constraint:OnDelete:CASCADE" json:"offers,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
