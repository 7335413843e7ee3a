package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hosteldesk/messmate/models"
)

// Service errors surfaced to controllers. None of these are used for
// internal control flow beyond the duplicated-key retry.
var (
	// ErrInvalidMealType means the meal type is not BREAKFAST/LUNCH/DINNER.
	ErrInvalidMealType = errors.New("invalid meal type")
	// ErrCutoffPassed means the decision window for the meal is closed today.
	ErrCutoffPassed = errors.New("cutoff time has passed for this meal")
	// ErrMenuNotFound means no menu is published for the given date and meal.
	ErrMenuNotFound = errors.New("no published menu for this date and meal")
	// ErrUnknownUser means the target user row does not exist; with an
	// authenticated caller this is a contract violation, not a user error.
	ErrUnknownUser = errors.New("unknown user")
)

// CutoffHours maps each meal to the local hour-of-day at which its attendance
// decision locks for the day. Requests at or after the hour are rejected.
var CutoffHours = map[models.MealType]int{
	models.MealBreakfast: 7,
	models.MealLunch:     11,
	models.MealDinner:    18,
}

// AttendanceService owns the per-user per-day per-meal attendance record and
// its opt-in/opt-out transition rule. Credit grants ride in the same database
// transaction as the attendance write, so the pair commits or rolls back as
// one unit.
type AttendanceService struct {
	db      *gorm.DB
	credits *CreditService
}

// NewAttendanceService creates an AttendanceService sharing the given DB
// handle with the credit service.
func NewAttendanceService(db *gorm.DB, credits *CreditService) *AttendanceService {
	return &AttendanceService{db: db, credits: credits}
}

// MidnightOf truncates t to the start of its calendar day, keeping the location.
func MidnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SetAttendance records the caller's opt-in/opt-out decision for today's
// meal. The timestamp is passed in rather than read from the wall clock so
// the cutoff gate is deterministic.
//
// Repeated calls with the same desired state are idempotent no-ops. A credit
// is granted exactly once per transition into opted-out; opting back in never
// claws credit back. A lost create race against a concurrent first toggle is
// resolved by retrying once, which lands on the update path.
func (s *AttendanceService) SetAttendance(userID uint, meal models.MealType, menuID uint, wantOptedIn bool, now time.Time) (*models.MealAttendance, error) {
	cutoff, ok := CutoffHours[meal]
	if !ok {
		return nil, ErrInvalidMealType
	}
	if now.Hour() >= cutoff {
		return nil, ErrCutoffPassed
	}

	day := MidnightOf(now)

	var menu models.Menu
	if err := s.db.Where("id = ? AND date = ? AND meal_type = ?", menuID, day, meal).Take(&menu).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	rec, err := s.apply(userID, meal, menuID, wantOptedIn, day)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		rec, err = s.apply(userID, meal, menuID, wantOptedIn, day)
	}
	return rec, err
}

// apply performs one transactional attempt at the upsert plus conditional
// credit grant. Transition detection happens in the storage layer: the
// conditional UPDATE matches only rows whose opted_in differs from the
// desired state, and the unique (user, date, meal) index decides create races.
func (s *AttendanceService) apply(userID uint, meal models.MealType, menuID uint, wantOptedIn bool, day time.Time) (*models.MealAttendance, error) {
	var rec models.MealAttendance

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.MealAttendance{}).
			Where("user_id = ? AND date = ? AND meal_type = ?", userID, day, meal).
			Where("opted_in <> ?", wantOptedIn).
			Updates(map[string]interface{}{"opted_in": wantOptedIn, "menu_id": menuID})
		if res.Error != nil {
			return res.Error
		}

		transitioned := res.RowsAffected == 1

		if transitioned {
			if err := tx.Where("user_id = ? AND date = ? AND meal_type = ?", userID, day, meal).Take(&rec).Error; err != nil {
				return err
			}
		} else {
			err := tx.Where("user_id = ? AND date = ? AND meal_type = ?", userID, day, meal).Take(&rec).Error
			if err == nil {
				// Already at the desired state; succeed without side effects.
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			rec = models.MealAttendance{
				UserID:   userID,
				Date:     day,
				MealType: meal,
				OptedIn:  wantOptedIn,
				MenuID:   menuID,
			}
			if err := tx.Create(&rec).Error; err != nil {
				// gorm.ErrDuplicatedKey bubbles up for the caller's retry.
				return err
			}
			// First toggle for this key; the assumed prior state is opted in.
			transitioned = !wantOptedIn
		}

		if transitioned && !wantOptedIn {
			return s.credits.grant(tx, userID, meal, day)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetForDate returns a user's attendance records for one calendar day.
func (s *AttendanceService) GetForDate(userID uint, day time.Time) ([]models.MealAttendance, error) {
	var recs []models.MealAttendance
	err := s.db.Where("user_id = ? AND date = ?", userID, MidnightOf(day)).
		Order("meal_type ASC").
		Find(&recs).Error
	return recs, err
}

// ListForDate returns all attendance records for one calendar day with
// student info preloaded, for the mess manager's headcount view.
func (s *AttendanceService) ListForDate(day time.Time) ([]models.MealAttendance, error) {
	var recs []models.MealAttendance
	err := s.db.Preload("User").
		Where("date = ?", MidnightOf(day)).
		Order("meal_type ASC, user_id ASC").
		Find(&recs).Error
	return recs, err
}
