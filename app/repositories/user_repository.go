package repositories

import (
	"context"

	"github.com/ruizhu/shopapi/app/models"
)

type UserRepository struct {
	crud[models.User]
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{crud[models.User]{db: db, table: "users"}}
}

// ExistsByUsernameOrEmail reports whether any user has the given username
// or the given email.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := r.db.conn(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	if err != nil {
		return false, r.wrap("exists", err)
	}
	return n > 0, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.conn(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, r.wrap("find by username", err)
	}
	return &u, nil
}
