package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewID returns a fresh record identifier usable by every store backend.
func NewID() string {
	return uuid.NewString()
}

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" bson:"name" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" bson:"email" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" bson:"password_hash" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;index" bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`

	Profile `gorm:"embedded" bson:",inline"`
}

// Profile holds the optional, role-dependent self-service fields.
type Profile struct {
	PhoneNumber        string   `gorm:"type:varchar(50)" bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	Address            string   `gorm:"type:text" bson:"address,omitempty" json:"address,omitempty"`
	Bio                string   `gorm:"type:text" bson:"bio,omitempty" json:"bio,omitempty"`
	ProfileImage       string   `gorm:"type:varchar(512)" bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	OrganizationName   string   `gorm:"type:varchar(255)" bson:"organization_name,omitempty" json:"organizationName,omitempty"`
	RegistrationNumber string   `gorm:"type:varchar(100)" bson:"registration_number,omitempty" json:"registrationNumber,omitempty"`
	Skills             []string `gorm:"serializer:json" bson:"skills,omitempty" json:"skills,omitempty"`
	Availability       string   `gorm:"type:varchar(255)" bson:"availability,omitempty" json:"availability,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}
