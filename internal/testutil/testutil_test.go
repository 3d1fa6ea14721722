package testutil_test

import (
	"testing"
	"time"

	"trirule/internal/errors"
	"trirule/internal/models"
	"trirule/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "user_settings", "categories", "transactions", "month_histories", "year_histories", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == 0 {
		t.Fatal("user should have a non-zero ID")
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeSave)
	if category.Type != models.CategoryTypeSave {
		t.Errorf("expected save category, got %s", category.Type)
	}

	date := testutil.Date(2024, time.March, 5)
	tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionKindExpense, "12.34", date)
	testutil.AssertDecimalEqual(t, "12.34", tx.Amount)
	if !tx.Date.Equal(date) {
		t.Errorf("expected date %v, got %v", date, tx.Date)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrCategoryNotFound, "custom message")
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
