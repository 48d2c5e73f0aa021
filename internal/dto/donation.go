package dto

import (
	"time"

	"github.com/nourishtogether/donation-api/internal/models"
)

// FoodDonationDTO represents a food donation in API responses. The
// reference objects are null when the identity is unset or was deleted.
type FoodDonationDTO struct {
	ID          string                `json:"id"`
	FoodType    string                `json:"foodType"`
	Quantity    string                `json:"quantity"`
	Location    string                `json:"location"`
	ExpiryTime  time.Time             `json:"expiryTime"`
	Status      models.DonationStatus `json:"status"`
	DonorID     string                `json:"donorId"`
	NGOID       *string               `json:"ngoId"`
	VolunteerID *string               `json:"volunteerId"`
	Donor       *UserRefDTO           `json:"donor"`
	NGO         *UserRefDTO           `json:"ngo"`
	Volunteer   *UserRefDTO           `json:"volunteer"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// MoneyDonationDTO represents a money donation in API responses
type MoneyDonationDTO struct {
	ID        string      `json:"id"`
	Amount    int64       `json:"amount"`
	PaymentID string      `json:"paymentId"`
	OrderID   string      `json:"orderId,omitempty"`
	Date      time.Time   `json:"date"`
	DonorID   string      `json:"donorId"`
	Donor     *UserRefDTO `json:"donor"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ToFoodDonationDTO converts a FoodDonation model to FoodDonationDTO
func ToFoodDonationDTO(d models.FoodDonation) FoodDonationDTO {
	return FoodDonationDTO{
		ID:          d.ID,
		FoodType:    d.FoodType,
		Quantity:    d.Quantity,
		Location:    d.Location,
		ExpiryTime:  d.ExpiryTime,
		Status:      d.Status,
		DonorID:     d.DonorID,
		NGOID:       d.NGOID,
		VolunteerID: d.VolunteerID,
		Donor:       ToUserRefDTO(d.Donor),
		NGO:         ToUserRefDTO(d.NGO),
		Volunteer:   ToUserRefDTO(d.Volunteer),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func ToFoodDonationDTOs(donations []models.FoodDonation) []FoodDonationDTO {
	items := make([]FoodDonationDTO, len(donations))
	for i, d := range donations {
		items[i] = ToFoodDonationDTO(d)
	}
	return items
}

// ToMoneyDonationDTO converts a MoneyDonation model to MoneyDonationDTO
func ToMoneyDonationDTO(d models.MoneyDonation) MoneyDonationDTO {
	return MoneyDonationDTO{
		ID:        d.ID,
		Amount:    d.Amount,
		PaymentID: d.PaymentID,
		OrderID:   d.OrderID,
		Date:      d.Date,
		DonorID:   d.DonorID,
		Donor:     ToUserRefDTO(d.Donor),
		CreatedAt: d.CreatedAt,
	}
}

func ToMoneyDonationDTOs(donations []models.MoneyDonation) []MoneyDonationDTO {
	items := make([]MoneyDonationDTO, len(donations))
	for i, d := range donations {
		items[i] = ToMoneyDonationDTO(d)
	}
	return items
}
