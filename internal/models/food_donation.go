package models

import (
	"time"

	"gorm.io/gorm"
)

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusAccepted  DonationStatus = "accepted"
	DonationStatusCompleted DonationStatus = "completed"
)

func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationStatusPending, DonationStatusAccepted, DonationStatusCompleted:
		return true
	default:
		return false
	}
}

type FoodDonation struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	DonorID     string         `gorm:"type:varchar(36);not null;index" bson:"donor_id" json:"donorId"`
	FoodType    string         `gorm:"type:varchar(255);not null" bson:"food_type" json:"foodType"`
	Quantity    string         `gorm:"type:varchar(100);not null" bson:"quantity" json:"quantity"`
	Location    string         `gorm:"type:varchar(255);not null" bson:"location" json:"location"`
	ExpiryTime  time.Time      `gorm:"not null" bson:"expiry_time" json:"expiryTime"`
	Status      DonationStatus `gorm:"type:varchar(20);not null;default:'pending';index" bson:"status" json:"status"`
	NGOID       *string        `gorm:"column:ngo_id;type:varchar(36)" bson:"ngo_id,omitempty" json:"ngoId"`
	VolunteerID *string        `gorm:"type:varchar(36)" bson:"volunteer_id,omitempty" json:"volunteerId"`
	CreatedAt   time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updated_at" json:"updatedAt"`

	// Relations, populated on read. Never owned.
	Donor     *User `gorm:"foreignKey:DonorID" bson:"-" json:"-"`
	NGO       *User `gorm:"foreignKey:NGOID" bson:"-" json:"-"`
	Volunteer *User `gorm:"foreignKey:VolunteerID" bson:"-" json:"-"`
}

func (d *FoodDonation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	if d.Status == "" {
		d.Status = DonationStatusPending
	}
	return nil
}
