package repository

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	domainrepo "storefront/internal/repository"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// Create inserts the user. A taken email yields domainrepo.ErrDuplicate.
func (r *userGormRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	user.Email = strings.ToLower(user.Email)
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return model.User{}, translateError(err)
	}
	return user, nil
}

func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&u).Error
	if err != nil {
		return model.User{}, translateError(err)
	}
	return u, nil
}

func (r *userGormRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return model.User{}, translateError(err)
	}
	return u, nil
}
