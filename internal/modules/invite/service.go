package invite

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/pkg/pagination"
	"github.com/classhall/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db         *gorm.DB
	defaultTTL time.Duration
	logger     *zap.Logger
}

func NewService(db *gorm.DB, defaultTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{db: db, defaultTTL: defaultTTL, logger: logger}
}

// Create mints one or more invite codes pinned to a role. TTLHours falls back
// to the configured default when omitted.
func (s *Service) Create(dto *CreateInviteDTO, createdBy string) ([]models.InviteModel, error) {
	role := dto.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !role.Valid() {
		return nil, errUnknownRole
	}

	count := dto.Count
	if count == 0 {
		count = 1
	}

	ttl := s.defaultTTL
	if dto.TTLHours > 0 {
		ttl = time.Duration(dto.TTLHours) * time.Hour
	}
	expiresAt := time.Now().Add(ttl)

	invites := make([]models.InviteModel, 0, count)
	for i := 0; i < count; i++ {
		code, err := randomCode()
		if err != nil {
			return nil, err
		}
		invites = append(invites, models.InviteModel{
			Code:      code,
			Role:      role,
			CreatedBy: createdBy,
			ExpiresAt: &expiresAt,
		})
	}

	if err := s.db.Create(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// List returns invites newest first.
func (s *Service) List(q pagination.Query) ([]models.InviteModel, response.Pagination, error) {
	tx := s.db.Model(&models.InviteModel{}).Order("created_at DESC")
	var items []models.InviteModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

// PruneExpired deletes unused invites whose deadline has passed. Runs from
// the scheduler.
func (s *Service) PruneExpired() error {
	res := s.db.
		Where("used_by = '' AND expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Delete(&models.InviteModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.logger.Info("pruned expired invites", zap.Int64("count", res.RowsAffected))
	}
	return nil
}

func randomCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
