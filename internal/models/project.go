package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const ProjectStatusOpen = "open"

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Budget      *float64  `json:"budget"`
	Status      string    `gorm:"size:50;default:'open'" json:"status"`
	ImageURL    string    `gorm:"size:255" json:"image_url"`

	// client_id is fixed at creation; no update path changes it
	ClientID   uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client   *User     `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Offers   []Offer   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"offers,omitempty"`
	Reviews  []Review  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
}

// OwnerID satisfies policy.Resource; projects belong to their client.
func (p *Project) OwnerID() uuid.UUID { return p.ClientID }

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
