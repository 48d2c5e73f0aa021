package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func mongoRepos(mt *mtest.T) Repositories {
	return NewMongoRepositories(mt.DB, time.Second)
}

func ns(mt *mtest.T, coll string) string {
	return mt.DB.Name() + "." + coll
}

func userDoc(id, name string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "email", Value: name + "@example.com"},
	}
}

func foodDoc(id string, status models.DonationStatus, extra ...bson.E) bson.D {
	doc := bson.D{
		{Key: "_id", Value: id},
		{Key: "donor_id", Value: "donor-1"},
		{Key: "food_type", Value: "Rice"},
		{Key: "quantity", Value: "10kg"},
		{Key: "location", Value: "Kitchen"},
		{Key: "expiry_time", Value: time.Now().Add(time.Hour)},
		{Key: "status", Value: string(status)},
	}
	return append(doc, extra...)
}

func TestMongoFoodDonationRepository_CompareAndSwapStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	accept := policy.Transition{
		Event:   policy.EventAccept,
		From:    models.DonationStatusPending,
		To:      models.DonationStatusAccepted,
		ActorID: "ngo-1",
	}

	mt.Run("applied", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: foodDoc("d1", models.DonationStatusAccepted,
				bson.E{Key: "ngo_id", Value: "ngo-1"})}),
			mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch,
				userDoc("donor-1", "donor"), userDoc("ngo-1", "ngo")),
		)

		updated, err := mongoRepos(mt).FoodDonations.CompareAndSwapStatus(context.Background(), "d1", accept)
		require.NoError(mt, err)
		assert.Equal(mt, models.DonationStatusAccepted, updated.Status)
		require.NotNil(mt, updated.NGOID)
		assert.Equal(mt, "ngo-1", *updated.NGOID)
		require.NotNil(mt, updated.Donor)
		assert.Equal(mt, "donor", updated.Donor.Name)
		require.NotNil(mt, updated.NGO)
		assert.Equal(mt, "ngo@example.com", updated.NGO.Email)
		assert.Nil(mt, updated.Volunteer)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "d1", cmd.Lookup("query", "_id").StringValue())
		assert.Equal(mt, "pending", cmd.Lookup("query", "status").StringValue())
		assert.Equal(mt, "accepted", cmd.Lookup("update", "$set", "status").StringValue())
		assert.Equal(mt, "ngo-1", cmd.Lookup("update", "$set", "ngo_id").StringValue())
	})

	mt.Run("lost race reports current status", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns(mt, foodDonationsCollection), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "d1"}, {Key: "status", Value: "accepted"}}),
		)

		_, err := mongoRepos(mt).FoodDonations.CompareAndSwapStatus(context.Background(), "d1", accept)
		var stale *StaleStateError
		require.ErrorAs(mt, err, &stale)
		assert.Equal(mt, models.DonationStatusAccepted, stale.Current)
	})

	mt.Run("missing record", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns(mt, foodDonationsCollection), mtest.FirstBatch),
		)

		_, err := mongoRepos(mt).FoodDonations.CompareAndSwapStatus(context.Background(), "missing", accept)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("unsupported event", func(mt *mtest.T) {
		_, err := mongoRepos(mt).FoodDonations.CompareAndSwapStatus(context.Background(), "d1", policy.Transition{Event: "cancel"})
		assert.Error(mt, err)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongoFoodDonationRepository_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("populates donor and leaves absent references nil", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, foodDonationsCollection), mtest.FirstBatch,
				foodDoc("d1", models.DonationStatusAccepted, bson.E{Key: "ngo_id", Value: "ngo-deleted"})),
			mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch, userDoc("donor-1", "donor")),
		)

		d, err := mongoRepos(mt).FoodDonations.FindByID(context.Background(), "d1")
		require.NoError(mt, err)
		require.NotNil(mt, d.Donor)
		assert.Equal(mt, "donor", d.Donor.Name)
		assert.Nil(mt, d.NGO, "a deleted NGO renders as absent")
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, foodDonationsCollection), mtest.FirstBatch))

		_, err := mongoRepos(mt).FoodDonations.FindByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoFoodDonationRepository_ListScope(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("status scope", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, foodDonationsCollection), mtest.FirstBatch,
				foodDoc("d1", models.DonationStatusPending)),
			mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch, userDoc("donor-1", "donor")),
		)

		list, err := mongoRepos(mt).FoodDonations.List(context.Background(), policy.FoodDonationScope{Status: models.DonationStatusPending})
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		assert.Equal(mt, "donor", list[0].Donor.Name)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "pending", cmd.Lookup("filter", "status").StringValue())
		_, err = cmd.LookupErr("filter", "donor_id")
		assert.Error(mt, err, "status scope does not filter by donor")
	})

	mt.Run("empty result", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, foodDonationsCollection), mtest.FirstBatch))

		list, err := mongoRepos(mt).FoodDonations.List(context.Background(), policy.FoodDonationScope{DonorID: "donor-1"})
		require.NoError(mt, err)
		assert.NotNil(mt, list)
		assert.Empty(mt, list)
	})
}

func TestMongoMoneyDonationRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stamps id and date", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		d := &models.MoneyDonation{DonorID: "donor-1", Amount: 500, PaymentID: "pay_1"}
		require.NoError(mt, mongoRepos(mt).MoneyDonations.Create(context.Background(), d))
		assert.NotEmpty(mt, d.ID)
		assert.False(mt, d.Date.IsZero())
		assert.False(mt, d.CreatedAt.IsZero())
	})

	mt.Run("duplicate payment id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: money_donations index: payment_id_1",
		}))

		err := mongoRepos(mt).MoneyDonations.Create(context.Background(),
			&models.MoneyDonation{DonorID: "donor-1", Amount: 500, PaymentID: "pay_1"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}

func TestMongoMoneyDonationRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("resolves donors", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, moneyDonationsCollection), mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: "m1"},
					{Key: "donor_id", Value: "donor-1"},
					{Key: "amount", Value: int64(500)},
					{Key: "payment_id", Value: "pay_1"},
					{Key: "date", Value: time.Now()},
				},
				bson.D{
					{Key: "_id", Value: "m2"},
					{Key: "donor_id", Value: "donor-gone"},
					{Key: "amount", Value: int64(50)},
					{Key: "payment_id", Value: "pay_2"},
					{Key: "date", Value: time.Now()},
				},
			),
			mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch, userDoc("donor-1", "donor")),
		)

		list, err := mongoRepos(mt).MoneyDonations.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		require.NotNil(mt, list[0].Donor)
		assert.Equal(mt, "donor", list[0].Donor.Name)
		assert.EqualValues(mt, 500, list[0].Amount)
		assert.Nil(mt, list[1].Donor)
	})
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: email_1",
		}))

		err := mongoRepos(mt).Users.Create(context.Background(),
			&models.User{Name: "A", Email: "a@example.com", PasswordHash: "x", Role: models.RoleDonor})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("update sets profile fields only", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		user := &models.User{ID: "u1", Name: "Asha", Email: "asha@example.com", Role: models.RoleDonor}
		user.Skills = []string{"driving"}
		require.NoError(mt, mongoRepos(mt).Users.Update(context.Background(), user))

		cmd := mt.GetStartedEvent().Command
		set := cmd.Lookup("updates").Array().Lookup("0", "u", "$set").Document()
		assert.Equal(mt, "Asha", set.Lookup("name").StringValue())
		_, err := set.LookupErr("role")
		assert.Error(mt, err, "role is never written by a profile update")
		_, err = set.LookupErr("email")
		assert.Error(mt, err)
	})

	mt.Run("update of missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := mongoRepos(mt).Users.Update(context.Background(), &models.User{ID: "missing"})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete of missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := mongoRepos(mt).Users.Delete(context.Background(), "missing")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch,
			append(userDoc("u1", "asha"), bson.E{Key: "role", Value: "ngo"})))

		user, err := mongoRepos(mt).Users.FindByEmail(context.Background(), "asha@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", user.ID)
		assert.Equal(mt, models.RoleNGO, user.Role)
	})
}

func TestTranslateMongo(t *testing.T) {
	assert.NoError(t, translateMongo(nil))
	assert.ErrorIs(t, translateMongo(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, translateMongo(mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}), ErrDuplicate)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateMongo(other))
}
