package users

import (
	"time"
)

type Role string

const (
	RoleOrganizer Role = "team_organizer"
	RoleTurfOwner Role = "turf_owner"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Contact   string    `json:"contact" gorm:"type:varchar(20)"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'team_organizer'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleOrganizer, RoleTurfOwner, RoleAdmin:
		return true
	default:
		return false
	}
}
