package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/blockhaven/backend/src/logger"
	"github.com/blockhaven/backend/src/user/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ domain.Repository = (*UserRepo)(nil)

type User struct {
	ID           string `gorm:"type:uuid;primarykey"`
	Email        string `gorm:"size:255;not null;uniqueIndex:uidx_user_email"`
	PasswordHash string `gorm:"size:100;not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

type UserRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, log *logger.Logger) *UserRepo {
	if err := db.AutoMigrate(&User{}); err != nil {
		log.Fatalf("failed to migrate users schema: %v", err)
	}
	return &UserRepo{db: db, log: log}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	model := User{
		ID:           u.ID,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
		IsActive:     u.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainUser(&m), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainUser(&m), nil
}

func toDomainUser(m *User) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		IsAdmin:      m.IsAdmin,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
