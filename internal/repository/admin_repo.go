package repository

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fatemameem/technest-backend/internal/models"
)

// AdminRepo backs the role allow-list. Emails are stored lowercase.
type AdminRepo struct {
	col *mongo.Collection
}

func NewAdminRepo(col *mongo.Collection) *AdminRepo {
	return &AdminRepo{col: col}
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var u models.AdminUser
	err := r.col.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RoleByEmail returns the role of an allow-listed email, or
// mongo.ErrNoDocuments when the email is not listed.
func (r *AdminRepo) RoleByEmail(ctx context.Context, email string) (string, error) {
	var doc struct {
		Role string `bson:"role"`
	}
	err := r.col.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&doc)
	if err != nil {
		return "", err
	}
	return doc.Role, nil
}

func (r *AdminRepo) Insert(ctx context.Context, u *models.AdminUser) error {
	u.Email = strings.ToLower(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, u)
	return err
}

func (r *AdminRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}
