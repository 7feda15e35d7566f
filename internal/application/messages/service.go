package messages

import (
	"context"
	"strings"

	"estate-backend/internal/domain"
	"estate-backend/internal/pkg/apperror"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// List returns all site messages, newest first.
func (s *Service) List(ctx context.Context) ([]domain.TextMessage, error) {
	var msgs []domain.TextMessage
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&msgs).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return msgs, nil
}

// Create stores a free-text message. The surface is open, so the only rule
// is a non-empty text.
func (s *Service) Create(ctx context.Context, text string) (*domain.TextMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.FieldError("text", "Text is required")
	}
	msg := &domain.TextMessage{Text: text}
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return msg, nil
}
