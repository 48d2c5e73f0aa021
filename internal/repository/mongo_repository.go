package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/nourishtogether/donation-api/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection          = "users"
	foodDonationsCollection  = "food_donations"
	moneyDonationsCollection = "money_donations"
)

// mongoStore holds the shared database handle and per-call timeout.
type mongoStore struct {
	db      *mongo.Database
	timeout time.Duration
}

func (s mongoStore) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.timeout)
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

// publicUsers loads id/name/email for the given ids, keyed by id.
func (s mongoStore) publicUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.db.Collection(usersCollection).Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "name": 1, "email": 1}),
	)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// NewMongoRepositories wires every Mongo implementation against db.
func NewMongoRepositories(db *mongo.Database, timeout time.Duration) Repositories {
	store := mongoStore{db: db, timeout: timeout}
	return Repositories{
		Users:          &MongoUserRepository{store},
		FoodDonations:  &MongoFoodDonationRepository{store},
		MoneyDonations: &MongoMoneyDonationRepository{store},
	}
}

// EnsureMongoIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		foodDonationsCollection: {
			{Keys: bson.D{{Key: "donor_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		moneyDonationsCollection: {
			{Keys: bson.D{{Key: "payment_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, idx := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// MongoUserRepository is a MongoDB implementation of UserRepository
type MongoUserRepository struct {
	mongoStore
}

func (r *MongoUserRepository) coll() *mongo.Collection {
	return r.db.Collection(usersCollection)
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if user.ID == "" {
		user.ID = models.NewID()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := r.coll().InsertOne(ctx, user)
	return translateMongo(err)
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translateMongo(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.coll().FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translateMongo(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	user.UpdatedAt = time.Now()
	res, err := r.coll().UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"name":                user.Name,
		"phone_number":        user.PhoneNumber,
		"address":             user.Address,
		"bio":                 user.Bio,
		"profile_image":       user.ProfileImage,
		"organization_name":   user.OrganizationName,
		"registration_number": user.RegistrationNumber,
		"skills":              user.Skills,
		"availability":        user.Availability,
		"updated_at":          user.UpdatedAt,
	}})
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) List(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	total, err := r.coll().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if page.Limit > 0 {
		opts.SetSkip(int64(page.Offset)).SetLimit(int64(page.Limit))
	}
	cur, err := r.coll().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Client().Ping(ctx, nil)
}

// MongoFoodDonationRepository is a MongoDB implementation of FoodDonationRepository
type MongoFoodDonationRepository struct {
	mongoStore
}

func (r *MongoFoodDonationRepository) coll() *mongo.Collection {
	return r.db.Collection(foodDonationsCollection)
}

func (r *MongoFoodDonationRepository) Create(ctx context.Context, donation *models.FoodDonation) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if donation.ID == "" {
		donation.ID = models.NewID()
	}
	if donation.Status == "" {
		donation.Status = models.DonationStatusPending
	}
	now := time.Now()
	donation.CreatedAt, donation.UpdatedAt = now, now

	_, err := r.coll().InsertOne(ctx, donation)
	return translateMongo(err)
}

func (r *MongoFoodDonationRepository) FindByID(ctx context.Context, id string) (*models.FoodDonation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var donation models.FoodDonation
	if err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&donation); err != nil {
		return nil, translateMongo(err)
	}
	if err := r.populate(ctx, []*models.FoodDonation{&donation}); err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *MongoFoodDonationRepository) List(ctx context.Context, scope policy.FoodDonationScope) ([]models.FoodDonation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if scope.DonorID != "" {
		filter["donor_id"] = scope.DonorID
	}
	if scope.Status != "" {
		filter["status"] = scope.Status
	}

	cur, err := r.coll().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	donations := []models.FoodDonation{}
	if err := cur.All(ctx, &donations); err != nil {
		return nil, err
	}

	ptrs := make([]*models.FoodDonation, len(donations))
	for i := range donations {
		ptrs[i] = &donations[i]
	}
	if err := r.populate(ctx, ptrs); err != nil {
		return nil, err
	}
	return donations, nil
}

// CompareAndSwapStatus uses FindOneAndUpdate filtered on the expected status.
func (r *MongoFoodDonationRepository) CompareAndSwapStatus(ctx context.Context, id string, t policy.Transition) (*models.FoodDonation, error) {
	field, ok := actorColumn(t.Event)
	if !ok {
		return nil, fmt.Errorf("repository: unsupported transition event %q", t.Event)
	}

	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var updated models.FoodDonation
	err := r.coll().FindOneAndUpdate(opCtx,
		bson.M{"_id": id, "status": t.From},
		bson.M{"$set": bson.M{
			"status":     t.To,
			field:        t.ActorID,
			"updated_at": time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)

	if errors.Is(err, mongo.ErrNoDocuments) {
		var current models.FoodDonation
		findErr := r.coll().FindOne(opCtx, bson.M{"_id": id},
			options.FindOne().SetProjection(bson.M{"status": 1}),
		).Decode(&current)
		if findErr != nil {
			return nil, translateMongo(findErr)
		}
		return nil, &StaleStateError{Current: current.Status}
	}
	if err != nil {
		return nil, err
	}

	if err := r.populate(opCtx, []*models.FoodDonation{&updated}); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoFoodDonationRepository) populate(ctx context.Context, donations []*models.FoodDonation) error {
	seen := map[string]struct{}{}
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, d := range donations {
		add(d.DonorID)
		if d.NGOID != nil {
			add(*d.NGOID)
		}
		if d.VolunteerID != nil {
			add(*d.VolunteerID)
		}
	}

	users, err := r.publicUsers(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve donation references: %w", err)
	}
	for _, d := range donations {
		d.Donor = users[d.DonorID]
		if d.NGOID != nil {
			d.NGO = users[*d.NGOID]
		}
		if d.VolunteerID != nil {
			d.Volunteer = users[*d.VolunteerID]
		}
	}
	return nil
}

// MongoMoneyDonationRepository is a MongoDB implementation of MoneyDonationRepository
type MongoMoneyDonationRepository struct {
	mongoStore
}

func (r *MongoMoneyDonationRepository) coll() *mongo.Collection {
	return r.db.Collection(moneyDonationsCollection)
}

func (r *MongoMoneyDonationRepository) Create(ctx context.Context, donation *models.MoneyDonation) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if donation.ID == "" {
		donation.ID = models.NewID()
	}
	now := time.Now()
	if donation.Date.IsZero() {
		donation.Date = now
	}
	donation.CreatedAt, donation.UpdatedAt = now, now

	_, err := r.coll().InsertOne(ctx, donation)
	return translateMongo(err)
}

func (r *MongoMoneyDonationRepository) List(ctx context.Context) ([]models.MoneyDonation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.coll().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	donations := []models.MoneyDonation{}
	if err := cur.All(ctx, &donations); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(donations))
	for _, d := range donations {
		ids = append(ids, d.DonorID)
	}
	users, err := r.publicUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve donors: %w", err)
	}
	for i := range donations {
		donations[i].Donor = users[donations[i].DonorID]
	}
	return donations, nil
}
