package repository

import (
	"context"
	"regexp"
	"testing"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMarkRepository_Upsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMarkRepository(db)
	ctx := context.Background()

	mark := &models.Mark{Value: 4, PostID: 1, UserID: 2}

	// one row per (post, sender): conflict replaces the value
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT ("post_id","user_id") DO UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Upsert(ctx, mark)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepository_GetByPostAndSender(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMarkRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "value", "post_id", "user_id"}).
			AddRow(1, 5, 1, 2)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "marks" WHERE post_id = $1 AND user_id = $2 ORDER BY "marks"."id" LIMIT $3`)).
			WithArgs(1, 2, 1).
			WillReturnRows(rows)

		mark, err := repo.GetByPostAndSender(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, mark.Value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "marks" WHERE post_id = $1 AND user_id = $2 ORDER BY "marks"."id" LIMIT $3`)).
			WithArgs(1, 9, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		mark, err := repo.GetByPostAndSender(ctx, 1, 9)
		assert.Error(t, err)
		assert.Nil(t, mark)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
