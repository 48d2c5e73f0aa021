package dto

import (
	"time"

	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/utils"
)

// UserDTO represents the full identity, without credentials
type UserDTO struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Role               models.Role `json:"role"`
	PhoneNumber        string      `json:"phoneNumber,omitempty"`
	Address            string      `json:"address,omitempty"`
	Bio                string      `json:"bio,omitempty"`
	ProfileImage       string      `json:"profileImage,omitempty"`
	OrganizationName   string      `json:"organizationName,omitempty"`
	RegistrationNumber string      `json:"registrationNumber,omitempty"`
	Skills             []string    `json:"skills,omitempty"`
	Availability       string      `json:"availability,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// UserRefDTO is the display-safe view of a referenced identity
type UserRefDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO `json:"users"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalCount int64     `json:"totalCount"`
	TotalPages int       `json:"totalPages"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		PhoneNumber:        user.PhoneNumber,
		Address:            user.Address,
		Bio:                user.Bio,
		ProfileImage:       user.ProfileImage,
		OrganizationName:   user.OrganizationName,
		RegistrationNumber: user.RegistrationNumber,
		Skills:             user.Skills,
		Availability:       user.Availability,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}

// ToUserRefDTO returns nil when the reference was not resolved, which is
// also how a deleted identity renders.
func ToUserRefDTO(user *models.User) *UserRefDTO {
	if user == nil || user.ID == "" {
		return nil
	}
	return &UserRefDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ToUserListResponse converts one page of users
func ToUserListResponse(users []models.User, page, pageSize int, totalCount int64) UserListResponse {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}

	return UserListResponse{
		Users:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: utils.PaginationParams{Limit: pageSize}.TotalPages(totalCount),
	}
}
