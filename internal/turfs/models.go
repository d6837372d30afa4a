package turfs

import (
	"time"
)

type Turf struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	OwnerID    int64     `json:"owner_id" gorm:"not null;index"`
	Name       string    `json:"name" gorm:"type:varchar(150);not null"`
	Address    string    `json:"address" gorm:"type:text;not null"`
	Capacity   int       `json:"capacity" gorm:"not null;default:10"`
	HourlyRate float64   `json:"hourly_rate" gorm:"type:decimal(10,2);not null"`
	Facilities string    `json:"facilities" gorm:"type:text"`
	Photo      string    `json:"photo" gorm:"type:varchar(255)"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (t *Turf) IsOwnedBy(userID int64) bool {
	return t.OwnerID > 0 && t.OwnerID == userID
}
