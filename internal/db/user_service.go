package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/balkashynov/worktrack/internal/models"
)

// CreateUser registers a new account. The password is hashed before the
// transaction opens. The first account created while no superuser exists is
// promoted to superuser.
func (s *Store) CreateUser(ctx context.Context, form models.SignupForm, hash func(string) (string, error)) (*models.User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(strings.ToLower(form.Email))
	if form.Name == "" || form.Email == "" || form.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if !strings.Contains(form.Email, "@") {
		return nil, fmt.Errorf("%w: %q is not an email address", ErrValidation, form.Email)
	}

	hashed, err := hash(form.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := models.User{
		Name:            form.Name,
		FamilyName:      strings.TrimSpace(form.FamilyName),
		FirstName:       strings.TrimSpace(form.FirstName),
		Email:           form.Email,
		HashedPassword:  hashed,
		IsActive:        true,
		UpdateTimestamp: now,
		CreateTimestamp: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("%w: email %s is already registered", ErrConflict, user.Email)
		}
		if err := tx.Model(&models.User{}).Where("name = ?", user.Name).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("%w: name %s is already taken", ErrConflict, user.Name)
		}

		var admins int64
		if err := tx.Model(&models.User{}).Where("is_superuser = ?", true).Count(&admins).Error; err != nil {
			return err
		}
		user.IsSuperuser = admins == 0

		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user created", "user_id", user.ID, "superuser", user.IsSuperuser)
	return &user, nil
}

// Authenticate returns the active user matching the credentials
func (s *Store) Authenticate(ctx context.Context, email, password string, verify func(hash, plain string) bool) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.TrimSpace(strings.ToLower(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !verify(user.HashedPassword, password) {
		return nil, ErrUnauthenticated
	}
	return &user, nil
}

// GetUser retrieves a user by id
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user #%d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByName retrieves a user by unique name
func (s *Store) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListActiveUsers returns id and name of every active account
func (s *Store) ListActiveUsers(ctx context.Context) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "name").
		Where("is_active = ?", true).
		Order("id").
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// SetUserActive activates or deactivates an account
func (s *Store) SetUserActive(ctx context.Context, id int64, active bool) error {
	return s.updateUser(ctx, id, map[string]any{"is_active": active})
}

// GrantSuperuser promotes an account
func (s *Store) GrantSuperuser(ctx context.Context, id int64) error {
	return s.updateUser(ctx, id, map[string]any{"is_superuser": true})
}

func (s *Store) updateUser(ctx context.Context, id int64, fields map[string]any) error {
	fields["update_timestamp"] = s.now()
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user #%d", ErrNotFound, id)
	}
	return nil
}

// DeleteUser removes an account that has no logged workloads
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var logged int64
		if err := tx.Model(&models.Workload{}).Where("user_id = ?", id).Count(&logged).Error; err != nil {
			return err
		}
		if logged > 0 {
			return fmt.Errorf("%w: user #%d still owns %d workloads", ErrConflict, id, logged)
		}
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: user #%d", ErrNotFound, id)
		}
		return nil
	})
}
