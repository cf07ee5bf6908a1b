package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:expenses_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Expense{}))
	return db
}

func TestAddAndListExpenses(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	added, err := svc.Add(ctx, AddExpenseInput{Reason: "Truck fare", Amount: 1200, Category: enums.ExpenseCategoryTransport})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, added.ID)

	_, err = svc.Add(ctx, AddExpenseInput{Reason: "Tea", Amount: 50})
	require.NoError(t, err)

	list, err := svc.List(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAddExpenseValidation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), AddExpenseInput{Reason: "", Amount: 100})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Add(context.Background(), AddExpenseInput{Reason: "Snacks", Amount: 0})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteExpense(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	added, err := svc.Add(ctx, AddExpenseInput{Reason: "Utility bill", Amount: 900, Category: enums.ExpenseCategoryUtility})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, added.ID))

	err = svc.Delete(ctx, added.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
