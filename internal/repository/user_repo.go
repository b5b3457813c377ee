package repository

import (
	"context"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	FindRoleByName(ctx context.Context, name string) (*model.Role, error)
	// EnsureRole creates the role when missing and replaces its permission set.
	EnsureRole(ctx context.Context, role *model.Role, perms []model.Permission) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Omit("Role").Create(u).Error
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	// Accept login by username OR email (case-insensitive email match)
	err := r.db.WithContext(ctx).
		Preload("Role.Permissions").
		Where("(username = ? OR LOWER(email) = LOWER(?)) AND is_active = true", username, username).
		First(&u).Error
	return &u, err
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Preload("Role.Permissions").First(&u, id).Error
	return &u, err
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *userRepo) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Preload("Permissions").Where("name = ?", name).First(&role).Error
	return &role, err
}

func (r *userRepo) EnsureRole(ctx context.Context, role *model.Role, perms []model.Permission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range perms {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&perms[i]).Error
			if err != nil {
				return err
			}
			if perms[i].ID == 0 {
				if err := tx.Where("resource = ? AND action = ?", perms[i].Resource, perms[i].Action).
					First(&perms[i]).Error; err != nil {
					return err
				}
			}
		}
		if err := tx.Where(model.Role{Name: role.Name}).
			Attrs(model.Role{Description: role.Description}).
			FirstOrCreate(role).Error; err != nil {
			return err
		}
		return tx.Model(role).Association("Permissions").Replace(perms)
	})
}
