// Package repository provides user data access layer.
package repository

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/idgrid/user-service/internal/domain/model"
)

// UserRepositoryInterface defines the interface for user repository operations.
//
// Find methods return (nil, nil) when no matching user exists.
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByEmailForAuth(ctx context.Context, email string) (*model.User, error)
	FindByName(ctx context.Context, name string) (*model.User, error)
	SearchByName(ctx context.Context, name string) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]*model.User, error)
	Count(ctx context.Context) (int64, error)
}

// MongoUserRepository implements UserRepositoryInterface using MongoDB.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB-backed user repository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

// Create inserts a new user into the database.
func (r *MongoUserRepository) Create(ctx context.Context, user *model.User) error {
	if user == nil {
		return ErrNilEntity
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.NameCanonical = model.FormatName(user.Name)

	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return duplicateKeyError(err)
	}
	return err
}

// duplicateKeyError maps a MongoDB duplicate key error to the sentinel for
// the violated index.
func duplicateKeyError(err error) error {
	if strings.Contains(err.Error(), "_id_") {
		return ErrDuplicateID
	}
	return ErrDuplicateEmail
}

// FindByID finds a user by ID (returns all fields).
func (r *MongoUserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email address (returns all fields).
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmailForAuth finds a user by email with only auth-required fields.
// This is optimized for login operations, returning only necessary fields.
func (r *MongoUserRepository) FindByEmailForAuth(ctx context.Context, email string) (*model.User, error) {
	// Projection for auth: only fields needed for authentication
	projection := bson.M{
		"_id":           1,
		"email":         1,
		"password_hash": 1,
		"active":        1,
		"role":          1,
		"name":          1,
	}
	opts := options.FindOne().SetProjection(projection)

	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}, opts).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByName finds the first user whose name matches exactly, in insertion
// order of the underlying _id sequence.
func (r *MongoUserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	opts := options.FindOne().SetSort(bson.M{"_id": 1})

	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"name": name}, opts).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchByName finds all users whose canonical name matches the canonical
// form of the given name.
func (r *MongoUserRepository) SearchByName(ctx context.Context, name string) ([]*model.User, error) {
	filter := bson.M{"name_canonical": model.FormatName(name)}
	opts := options.Find().SetSort(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update updates an existing user. Updating an absent user is not an error.
func (r *MongoUserRepository) Update(ctx context.Context, user *model.User) error {
	if user == nil {
		return ErrNilEntity
	}
	user.UpdatedAt = time.Now()
	user.NameCanonical = model.FormatName(user.Name)

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": user},
	)
	if mongo.IsDuplicateKeyError(err) {
		return duplicateKeyError(err)
	}
	return err
}

// Delete soft deletes a user by setting active to false.
func (r *MongoUserRepository) Delete(ctx context.Context, id uint64) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}},
	)
	return err
}

// List retrieves users with pagination, ordered by _id.
func (r *MongoUserRepository) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.M{"_id": 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the total number of stored users.
func (r *MongoUserRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// MaxID returns the highest assigned user identifier, or zero when the
// collection is empty. Startup seeds the identifier sequence from it so
// restarts never reissue an identifier.
func (r *MongoUserRepository) MaxID(ctx context.Context) (uint64, error) {
	opts := options.FindOne().SetSort(bson.M{"_id": -1}).SetProjection(bson.M{"_id": 1})

	var doc struct {
		ID uint64 `bson:"_id"`
	}
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.ID, nil
}
