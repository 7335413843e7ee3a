package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hosteldesk/messmate/models"
)

// newTestDB opens an in-memory database shared by all connections of the
// handle, capped at one open connection so concurrent transactions serialize
// the way a single-writer store does.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Menu{},
		&models.MealAttendance{},
		&models.CreditTransaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedStudent(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Name: "Asha", Email: "asha@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedMenu(t *testing.T, db *gorm.DB, day time.Time, meal models.MealType) models.Menu {
	t.Helper()
	menu := models.Menu{Date: MidnightOf(day), MealType: meal, Items: `["dal","rice"]`}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	return menu
}

func newServices(db *gorm.DB) (*AttendanceService, *CreditService) {
	credits := NewCreditService(db)
	return NewAttendanceService(db, credits), credits
}

func countTransactions(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.CreditTransaction{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return n
}

func TestSetAttendance_CutoffRejected(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newServices(db)
	user := seedStudent(t, db)

	cases := []struct {
		meal models.MealType
		hour int
	}{
		{models.MealBreakfast, 7},
		{models.MealBreakfast, 9},
		{models.MealLunch, 11},
		{models.MealDinner, 18},
		{models.MealDinner, 23},
	}
	for _, tc := range cases {
		now := time.Date(2026, time.March, 10, tc.hour, 5, 0, 0, time.Local)
		menu := seedMenu(t, db, now, tc.meal)
		_, err := svc.SetAttendance(user.ID, tc.meal, menu.ID, false, now)
		if !errors.Is(err, ErrCutoffPassed) {
			t.Fatalf("%s at %02d:05: want ErrCutoffPassed, got %v", tc.meal, tc.hour, err)
		}
		db.Delete(&menu)
	}

	// A rejected toggle leaves no trace.
	var recs int64
	db.Model(&models.MealAttendance{}).Count(&recs)
	if recs != 0 {
		t.Fatalf("cutoff rejection wrote attendance rows: %d", recs)
	}
	if n := countTransactions(t, db, user.ID); n != 0 {
		t.Fatalf("cutoff rejection granted credit, ledger entries: %d", n)
	}
}

func TestSetAttendance_BeforeCutoffAllowed(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newServices(db)
	user := seedStudent(t, db)

	now := time.Date(2026, time.March, 10, 6, 30, 0, 0, time.Local)
	menu := seedMenu(t, db, now, models.MealBreakfast)

	rec, err := svc.SetAttendance(user.ID, models.MealBreakfast, menu.ID, false, now)
	if err != nil {
		t.Fatalf("set attendance: %v", err)
	}
	if rec.OptedIn {
		t.Fatalf("want opted out record")
	}
}

func TestSetAttendance_MenuNotFound(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newServices(db)
	user := seedStudent(t, db)

	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)
	_, err := svc.SetAttendance(user.ID, models.MealLunch, 999, false, now)
	if !errors.Is(err, ErrMenuNotFound) {
		t.Fatalf("want ErrMenuNotFound, got %v", err)
	}
}

func TestSetAttendance_InvalidMeal(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newServices(db)

	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)
	_, err := svc.SetAttendance(1, models.MealType("BRUNCH"), 1, false, now)
	if !errors.Is(err, ErrInvalidMealType) {
		t.Fatalf("want ErrInvalidMealType, got %v", err)
	}
}

func TestSetAttendance_OptOutCreditsOnce(t *testing.T) {
	db := newTestDB(t)
	svc, credits := newServices(db)
	user := seedStudent(t, db)

	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)
	menu := seedMenu(t, db, now, models.MealLunch)

	for i := 0; i < 3; i++ {
		if _, err := svc.SetAttendance(user.ID, models.MealLunch, menu.ID, false, now); err != nil {
			t.Fatalf("opt out %d: %v", i, err)
		}
	}

	if n := countTransactions(t, db, user.ID); n != 1 {
		t.Fatalf("want exactly 1 ledger entry, got %d", n)
	}
	balance, err := credits.GetBalance(user.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 50 {
		t.Fatalf("want balance 50, got %v", balance)
	}
}

func TestSetAttendance_OptInNeverCredits(t *testing.T) {
	db := newTestDB(t)
	svc, credits := newServices(db)
	user := seedStudent(t, db)

	now := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.Local)
	menu := seedMenu(t, db, now, models.MealBreakfast)

	if _, err := svc.SetAttendance(user.ID, models.MealBreakfast, menu.ID, true, now); err != nil {
		t.Fatalf("opt in: %v", err)
	}
	if n := countTransactions(t, db, user.ID); n != 0 {
		t.Fatalf("opt in granted credit, ledger entries: %d", n)
	}
	balance, _ := credits.GetBalance(user.ID)
	if balance != 0 {
		t.Fatalf("want balance 0, got %v", balance)
	}
}

func TestSetAttendance_ToggleTwiceCreditsTwice(t *testing.T) {
	db := newTestDB(t)
	svc, credits := newServices(db)
	user := seedStudent(t, db)

	now := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.Local)
	menu := seedMenu(t, db, now, models.MealDinner)

	steps := []bool{false, true, false}
	for i, want := range steps {
		if _, err := svc.SetAttendance(user.ID, models.MealDinner, menu.ID, want, now); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}

	if n := countTransactions(t, db, user.ID); n != 2 {
		t.Fatalf("want 2 ledger entries for 2 opt-out transitions, got %d", n)
	}
	balance, _ := credits.GetBalance(user.ID)
	if balance != 120 {
		t.Fatalf("want balance 120, got %v", balance)
	}
}

func TestSetAttendance_OptBackInKeepsCredit(t *testing.T) {
	db := newTestDB(t)
	svc, credits := newServices(db)
	user := seedStudent(t, db)

	now := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.Local)
	menu := seedMenu(t, db, now, models.MealDinner)

	if _, err := svc.SetAttendance(user.ID, models.MealDinner, menu.ID, false, now); err != nil {
		t.Fatalf("opt out: %v", err)
	}
	balance, _ := credits.GetBalance(user.ID)
	if balance != 60 {
		t.Fatalf("want balance 60 after dinner opt-out, got %v", balance)
	}

	var txn models.CreditTransaction
	if err := db.Where("user_id = ?", user.ID).Take(&txn).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if txn.Reason != "Opted out of DINNER" {
		t.Fatalf("unexpected reason: %q", txn.Reason)
	}

	if _, err := svc.SetAttendance(user.ID, models.MealDinner, menu.ID, true, now); err != nil {
		t.Fatalf("opt back in: %v", err)
	}
	balance, _ = credits.GetBalance(user.ID)
	if balance != 60 {
		t.Fatalf("opt back in changed balance, got %v", balance)
	}
}

func TestSetAttendance_ConcurrentOptOutSingleCredit(t *testing.T) {
	db := newTestDB(t)
	svc, credits := newServices(db)
	user := seedStudent(t, db)

	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)
	menu := seedMenu(t, db, now, models.MealLunch)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SetAttendance(user.ID, models.MealLunch, menu.ID, false, now)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent opt out: %v", err)
		}
	}
	if n := countTransactions(t, db, user.ID); n != 1 {
		t.Fatalf("want exactly 1 ledger entry under contention, got %d", n)
	}
	balance, _ := credits.GetBalance(user.ID)
	if balance != 50 {
		t.Fatalf("want balance 50, got %v", balance)
	}
}

func TestGetForDate_ReturnsOwnRecords(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newServices(db)
	user := seedStudent(t, db)
	other := models.User{Name: "Ravi", Email: "ravi@example.com"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed other: %v", err)
	}

	now := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.Local)
	menu := seedMenu(t, db, now, models.MealBreakfast)

	if _, err := svc.SetAttendance(user.ID, models.MealBreakfast, menu.ID, false, now); err != nil {
		t.Fatalf("opt out: %v", err)
	}
	if _, err := svc.SetAttendance(other.ID, models.MealBreakfast, menu.ID, false, now); err != nil {
		t.Fatalf("other opt out: %v", err)
	}

	recs, err := svc.GetForDate(user.ID, now)
	if err != nil {
		t.Fatalf("get for date: %v", err)
	}
	if len(recs) != 1 || recs[0].UserID != user.ID {
		t.Fatalf("want 1 own record, got %+v", recs)
	}

	all, err := svc.ListForDate(now)
	if err != nil {
		t.Fatalf("list for date: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 records for the day, got %d", len(all))
	}
}
