package messages

import (
	"context"
	"testing"

	"estate-backend/internal/infrastructure/database"
	"estate-backend/internal/pkg/apperror"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMessagesTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}
}

func TestCreateAndList(t *testing.T) {
	svc := setupMessagesTest(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "  Viewing hours extended  ")
	require.NoError(t, err)
	assert.Equal(t, "Viewing hours extended", first.Text)

	_, err = svc.Create(ctx, "Office closed on Friday")
	require.NoError(t, err)

	msgs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
}

func TestCreateRequiresText(t *testing.T) {
	svc := setupMessagesTest(t)

	_, err := svc.Create(context.Background(), "   ")
	require.Error(t, err)
	assert.Contains(t, apperror.From(err).Fields, "text")
}
