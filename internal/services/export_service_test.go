package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"trirule/internal/models"
	"trirule/internal/testutil"
)

func TestExportCSV(t *testing.T) {
	t.Run("round_trips_through_import", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		histSvc := NewHistoryService(db)
		exportSvc := NewExportService(db)
		importSvc := NewImportService(db, histSvc)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeNeed)

		tx := &models.Transaction{
			UserID:      user.ID,
			CategoryID:  &category.ID,
			Kind:        models.TransactionKindExpense,
			Amount:      testutil.MustDecimal(t, "42.50"),
			Description: "Groceries run",
			Date:        testutil.Date(2024, time.March, 5),
		}
		testutil.AssertNoError(t, db.Create(tx).Error)

		var buf bytes.Buffer
		testutil.AssertNoError(t, exportSvc.ExportCSV(user.ID, &buf))

		records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
		testutil.AssertNoError(t, err)
		if len(records) != 2 {
			t.Fatalf("expected header plus 1 row, got %d records", len(records))
		}
		row := records[1]
		if row[0] != "2024-03-05" || row[1] != "expense" || row[2] != "42.50" {
			t.Errorf("unexpected row: %v", row)
		}
		if row[4] != category.Name || row[5] != "need" {
			t.Errorf("expected category columns, got %v", row)
		}

		// An export re-imports cleanly into another account.
		importer := testutil.CreateTestUser(t, db)
		summary, err := importSvc.Import(importer.ID, strings.NewReader(buf.String()), "export.csv")
		testutil.AssertNoError(t, err)
		if summary.SuccessCount != 1 || summary.ErrorCount != 0 {
			t.Errorf("expected 1/0, got %d/%d", summary.SuccessCount, summary.ErrorCount)
		}
	})

	t.Run("newest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		exportSvc := NewExportService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionKindExpense, "1.00", testutil.Date(2024, time.January, 1))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionKindExpense, "2.00", testutil.Date(2024, time.February, 1))

		var buf bytes.Buffer
		testutil.AssertNoError(t, exportSvc.ExportCSV(user.ID, &buf))

		records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
		testutil.AssertNoError(t, err)
		if records[1][0] != "2024-02-01" || records[2][0] != "2024-01-01" {
			t.Errorf("expected newest first, got %v then %v", records[1][0], records[2][0])
		}
	})
}

func TestExportXLSX(t *testing.T) {
	t.Run("builds_transactions_sheet", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		exportSvc := NewExportService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionKindIncome, "1000.00", testutil.Date(2024, time.March, 5))

		f, err := exportSvc.ExportXLSX(user.ID)
		testutil.AssertNoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Transactions")
		testutil.AssertNoError(t, err)
		if len(rows) != 2 {
			t.Fatalf("expected header plus 1 row, got %d", len(rows))
		}
		if rows[0][0] != "date" || rows[1][1] != "income" {
			t.Errorf("unexpected sheet contents: %v", rows)
		}
	})
}
