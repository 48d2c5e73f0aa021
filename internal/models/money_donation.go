package models

import (
	"time"

	"gorm.io/gorm"
)

// MoneyDonation is the persisted proof of a completed gateway payment.
// Amount is in whole currency units.
type MoneyDonation struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	DonorID   string    `gorm:"type:varchar(36);not null;index" bson:"donor_id" json:"donorId"`
	Amount    int64     `gorm:"not null" bson:"amount" json:"amount"`
	PaymentID string    `gorm:"type:varchar(100);uniqueIndex;not null" bson:"payment_id" json:"paymentId"`
	OrderID   string    `gorm:"type:varchar(100)" bson:"order_id,omitempty" json:"orderId,omitempty"`
	Date      time.Time `gorm:"not null" bson:"date" json:"date"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`

	Donor *User `gorm:"foreignKey:DonorID" bson:"-" json:"-"`
}

func (d *MoneyDonation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	if d.Date.IsZero() {
		d.Date = time.Now()
	}
	return nil
}
