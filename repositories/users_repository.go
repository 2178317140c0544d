package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/utils"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UsersRepository struct {
	col *mongo.Collection
}

func NewUsersRepository(col *mongo.Collection) *UsersRepository {
	return &UsersRepository{col: col}
}

func (r *UsersRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UsersRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UsersRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, oops.In("users").Code("USER_LOOKUP_FAILED").Wrap(err)
	}
	return &user, nil
}

func (r *UsersRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, &DuplicateError{Field: utils.DuplicateKeyField(err, "username", "email")}
		}
		return nil, oops.In("users").Code("USER_INSERT_FAILED").With("email", user.Email).Wrap(err)
	}
	return user, nil
}

func (r *UsersRepository) UpdatePassword(ctx context.Context, id bson.ObjectID, hash string) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"passwordHash": hash,
			"updatedAt":    time.Now().UTC(),
		},
	})
	if err != nil {
		return oops.In("users").Code("USER_UPDATE_FAILED").With("user_id", id.Hex()).Wrap(err)
	}
	return nil
}

// EnsureUser inserts user only if no account holds its email. It reports whether a document was inserted.
func (r *UsersRepository) EnsureUser(ctx context.Context, user *models.User) (bool, error) {
	filter := bson.M{"email": user.Email}
	update := bson.M{
		"$setOnInsert": bson.M{
			"username":     user.Username,
			"email":        user.Email,
			"passwordHash": user.PasswordHash,
			"role":         user.Role,
			"createdAt":    user.CreatedAt,
			"updatedAt":    user.UpdatedAt,
		},
	}

	res, err := r.col.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, oops.In("users").Code("USER_SEED_FAILED").With("email", user.Email).Wrap(err)
	}
	return res.UpsertedCount == 1, nil
}
