package user

import (
	"errors"
	"time"

	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/pkg/jwt"
	"github.com/classhall/core/internal/pkg/pagination"
	"github.com/classhall/core/internal/pkg/response"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Register creates an account by consuming an invite code. The invite's
// role, when set, decides the new account's role.
func (s *Service) Register(dto *RegisterDTO, ip string) (*models.UserModel, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user models.UserModel
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.UserModel{}).Where("username = ?", dto.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errUsernameTaken
		}

		var invite models.InviteModel
		err := tx.Where("code = ? AND used_by = ''", dto.InviteCode).First(&invite).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvalidInvite
		}
		if err != nil {
			return err
		}
		if invite.ExpiresAt != nil && invite.ExpiresAt.Before(time.Now()) {
			return errInvalidInvite
		}

		role := invite.Role
		if !role.Valid() {
			role = models.RoleStudent
		}

		user = models.UserModel{
			Username: dto.Username,
			Name:     dto.Name,
			Password: string(hash),
			Role:     role,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		// Consume the code; the guard on used_by loses gracefully to a
		// concurrent register with the same code.
		now := time.Now()
		res := tx.Model(&models.InviteModel{}).
			Where("id = ? AND used_by = ''", invite.ID).
			Updates(map[string]interface{}{"used_by": user.ID, "used_at": &now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInvalidInvite
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and issues a signed token.
func (s *Service) Login(dto *LoginDTO, ip string) (string, *models.UserModel, error) {
	var user models.UserModel
	err := s.db.Where("username = ?", dto.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, errBadCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)) != nil {
		return "", nil, errBadCredentials
	}

	token, err := jwt.Sign(user.ID, string(user.Role), tokenTTL)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	s.db.Model(&user).Updates(map[string]interface{}{
		"last_login_time": &now,
		"last_login_ip":   ip,
	})
	return token, &user, nil
}

// Get loads one user.
func (s *Service) Get(userID string) (*models.UserModel, error) {
	var user models.UserModel
	err := s.db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users newest first.
func (s *Service) List(q pagination.Query) ([]models.UserModel, response.Pagination, error) {
	tx := s.db.Model(&models.UserModel{}).Order("created_at DESC")
	var items []models.UserModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

// SetRole changes a user's role. The platform keeps at least one admin.
func (s *Service) SetRole(userID string, role models.UserRole) (*models.UserModel, error) {
	if !role.Valid() {
		return nil, errUnknownRole
	}

	var user models.UserModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&user, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUserNotFound
		}
		if err != nil {
			return err
		}

		if user.Role == models.RoleAdmin && role != models.RoleAdmin {
			var admins int64
			if err := tx.Model(&models.UserModel{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return errLastAdminLocked
			}
		}

		if err := tx.Model(&user).Update("role", role).Error; err != nil {
			return err
		}
		user.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
