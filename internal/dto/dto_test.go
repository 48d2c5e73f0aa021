package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFoodDonationDTO_MissingReferencesRenderNull(t *testing.T) {
	ngoID := "ngo-1"
	d := models.FoodDonation{
		ID:         "d1",
		DonorID:    "gone",
		FoodType:   "Bread",
		Quantity:   "20 loaves",
		Location:   "Bakery",
		ExpiryTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:     models.DonationStatusAccepted,
		NGOID:      &ngoID,
		NGO:        &models.User{ID: ngoID, Name: "Food Bank", Email: "bank@example.com", PasswordHash: "x"},
	}

	out := ToFoodDonationDTO(d)
	assert.Nil(t, out.Donor)
	require.NotNil(t, out.NGO)
	assert.Equal(t, "Food Bank", out.NGO.Name)
	assert.Nil(t, out.Volunteer)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Nil(t, m["donor"])
	assert.Nil(t, m["volunteerId"])
	assert.Equal(t, "ngo-1", m["ngoId"])
	assert.NotContains(t, string(raw), "password")
}

func TestToUserListResponse_TotalPages(t *testing.T) {
	users := []models.User{{ID: "a"}, {ID: "b"}}

	resp := ToUserListResponse(users, 1, 2, 5)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Users, 2)

	assert.Equal(t, 0, ToUserListResponse(nil, 1, 0, 5).TotalPages)
}

func TestResponseEnvelope(t *testing.T) {
	raw, err := json.Marshal(List([]string{}, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0}`, string(raw))

	raw, err = json.Marshal(WithToken(map[string]string{"id": "u1"}, "tok"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"id":"u1"},"token":"tok"}`, string(raw))
}
