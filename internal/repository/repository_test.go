package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nourishtogether/donation-api/internal/database"
	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/nourishtogether/donation-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), database.NewGormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, repos Repositories, name string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, repos.Users.Create(context.Background(), user))
	return user
}

func createPending(t *testing.T, repos Repositories, donorID string) *models.FoodDonation {
	t.Helper()
	d := &models.FoodDonation{
		DonorID:    donorID,
		FoodType:   "Rice",
		Quantity:   "10kg",
		Location:   "Warehouse A",
		ExpiryTime: time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, repos.FoodDonations.Create(context.Background(), d))
	return d
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repos := NewGormRepositories(newTestDB(t))
	ctx := context.Background()

	user := createUser(t, repos, "asha", models.RoleDonor)
	require.NotEmpty(t, user.ID)

	found, err := repos.Users.FindByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repos.Users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &models.User{Name: "asha2", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleNGO}
	assert.ErrorIs(t, repos.Users.Create(ctx, dup), ErrDuplicate)
}

func TestUserRepository_UpdateKeepsRoleAndEmail(t *testing.T) {
	db := newTestDB(t)
	repos := NewGormRepositories(db)
	ctx := context.Background()

	user := createUser(t, repos, "vikram", models.RoleVolunteer)

	user.Name = "Vikram S"
	user.Skills = []string{"driving", "cooking"}
	user.Role = models.RoleAdmin
	user.Email = "hijack@example.com"
	require.NoError(t, repos.Users.Update(ctx, user))

	stored, err := repos.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vikram S", stored.Name)
	assert.Equal(t, []string{"driving", "cooking"}, stored.Skills)
	assert.Equal(t, models.RoleVolunteer, stored.Role)
	assert.Equal(t, "vikram@example.com", stored.Email)
}

func TestUserRepository_ListAndDelete(t *testing.T) {
	repos := NewGormRepositories(newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		createUser(t, repos, name, models.RoleDonor)
	}

	users, total, err := repos.Users.List(ctx, utils.PaginationParams{Page: 1, Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)

	require.NoError(t, repos.Users.Delete(ctx, users[0].ID))
	assert.ErrorIs(t, repos.Users.Delete(ctx, users[0].ID), ErrNotFound)
}

func TestFoodDonationRepository_ListScopes(t *testing.T) {
	repos := NewGormRepositories(newTestDB(t))
	ctx := context.Background()

	d1 := createUser(t, repos, "donor1", models.RoleDonor)
	d2 := createUser(t, repos, "donor2", models.RoleDonor)
	ngo := createUser(t, repos, "ngo", models.RoleNGO)

	a := createPending(t, repos, d1.ID)
	createPending(t, repos, d2.ID)
	_, err := repos.FoodDonations.CompareAndSwapStatus(ctx, a.ID, policy.Transition{
		Event: policy.EventAccept, From: models.DonationStatusPending, To: models.DonationStatusAccepted, ActorID: ngo.ID,
	})
	require.NoError(t, err)

	own, err := repos.FoodDonations.List(ctx, policy.FoodDonationScope{DonorID: d1.ID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, d1.ID, own[0].DonorID)
	require.NotNil(t, own[0].Donor)
	assert.Equal(t, "donor1", own[0].Donor.Name)
	assert.Empty(t, own[0].Donor.PasswordHash, "references must not load credentials")
	require.NotNil(t, own[0].NGO)
	assert.Equal(t, ngo.ID, own[0].NGO.ID)
	assert.Nil(t, own[0].Volunteer)

	pending, err := repos.FoodDonations.List(ctx, policy.FoodDonationScope{Status: models.DonationStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, d2.ID, pending[0].DonorID)

	all, err := repos.FoodDonations.List(ctx, policy.FoodDonationScope{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFoodDonationRepository_CompareAndSwap(t *testing.T) {
	repos := NewGormRepositories(newTestDB(t))
	ctx := context.Background()

	donor := createUser(t, repos, "donor", models.RoleDonor)
	d := createPending(t, repos, donor.ID)

	accept := policy.Transition{Event: policy.EventAccept, From: models.DonationStatusPending, To: models.DonationStatusAccepted, ActorID: "ngo-1"}
	updated, err := repos.FoodDonations.CompareAndSwapStatus(ctx, d.ID, accept)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusAccepted, updated.Status)
	require.NotNil(t, updated.NGOID)
	assert.Equal(t, "ngo-1", *updated.NGOID)

	accept.ActorID = "ngo-2"
	_, err = repos.FoodDonations.CompareAndSwapStatus(ctx, d.ID, accept)
	require.ErrorIs(t, err, ErrStaleState)
	var stale *StaleStateError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, models.DonationStatusAccepted, stale.Current)

	stored, err := repos.FoodDonations.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "ngo-1", *stored.NGOID)

	_, err = repos.FoodDonations.CompareAndSwapStatus(ctx, "missing", accept)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFoodDonationRepository_ConcurrentAcceptHasOneWinner(t *testing.T) {
	repos := NewGormRepositories(newTestDB(t))
	ctx := context.Background()

	donor := createUser(t, repos, "donor", models.RoleDonor)
	d := createPending(t, repos, donor.ID)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := "ngo-" + string(rune('a'+i))
			_, err := repos.FoodDonations.CompareAndSwapStatus(ctx, d.ID, policy.Transition{
				Event: policy.EventAccept, From: models.DonationStatusPending, To: models.DonationStatusAccepted, ActorID: actor,
			})
			if err == nil {
				mu.Lock()
				winners = append(winners, actor)
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrStaleState)
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	stored, err := repos.FoodDonations.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, winners[0], *stored.NGOID)
}

func TestFoodDonationRepository_DeletedDonorRendersAbsent(t *testing.T) {
	repos := NewGormRepositories(newTestDB(t))
	ctx := context.Background()

	donor := createUser(t, repos, "gone", models.RoleDonor)
	d := createPending(t, repos, donor.ID)
	require.NoError(t, repos.Users.Delete(ctx, donor.ID))

	stored, err := repos.FoodDonations.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, donor.ID, stored.DonorID)
	assert.Nil(t, stored.Donor)
}

func TestMoneyDonationRepository(t *testing.T) {
	repos := NewGormRepositories(newTestDB(t))
	ctx := context.Background()

	donor := createUser(t, repos, "payer", models.RoleDonor)

	first := &models.MoneyDonation{DonorID: donor.ID, Amount: 500, PaymentID: "pay_123"}
	require.NoError(t, repos.MoneyDonations.Create(ctx, first))
	assert.False(t, first.Date.IsZero())

	dup := &models.MoneyDonation{DonorID: donor.ID, Amount: 500, PaymentID: "pay_123"}
	assert.ErrorIs(t, repos.MoneyDonations.Create(ctx, dup), ErrDuplicate)

	list, err := repos.MoneyDonations.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Donor)
	assert.Equal(t, "payer", list[0].Donor.Name)
}
