package entities

import "time"

// Profile caches the display data of an actor.
type Profile struct {
	ID          string `gorm:"type:varchar(128);primaryKey"`
	DisplayName string `gorm:"type:varchar(200);not null"`
	Role        string `gorm:"type:varchar(32);not null"`
	AvatarURL   string `gorm:"type:text"`
	UpdatedAt   time.Time
}

func (Profile) TableName() string {
	return "messaging_api.profiles"
}
