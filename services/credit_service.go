package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hosteldesk/messmate/models"
)

// OptOutCredit is the fixed per-meal credit schedule, in credit units with
// two-decimal precision. Kept as data so the policy is testable in isolation.
var OptOutCredit = map[models.MealType]float64{
	models.MealBreakfast: 30,
	models.MealLunch:     50,
	models.MealDinner:    60,
}

// CreditService maintains user credit balances and the append-only
// transaction ledger. It is the only mutator of User.Credits and it never
// decrements.
type CreditService struct {
	db *gorm.DB
}

// NewCreditService creates a CreditService.
func NewCreditService(db *gorm.DB) *CreditService {
	return &CreditService{db: db}
}

// GrantOptOutCredit credits the scheduled amount for an opted-out meal and
// appends one ledger entry, atomically.
func (s *CreditService) GrantOptOutCredit(userID uint, meal models.MealType, date time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.grant(tx, userID, meal, date)
	})
}

// grant runs inside the caller's transaction. The balance increment is an
// atomic in-database expression, so concurrent grants for the same user
// serialize on the row without lost updates.
func (s *CreditService) grant(tx *gorm.DB, userID uint, meal models.MealType, date time.Time) error {
	amount, ok := OptOutCredit[meal]
	if !ok {
		return ErrInvalidMealType
	}

	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUnknownUser
	}

	txn := models.CreditTransaction{
		Reference: uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Reason:    fmt.Sprintf("Opted out of %s", meal),
		Date:      date,
		MealType:  meal,
	}
	return tx.Create(&txn).Error
}

// GetBalance returns the user's current credit balance.
func (s *CreditService) GetBalance(userID uint) (float64, error) {
	var user models.User
	if err := s.db.Select("credits").Take(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrUnknownUser
		}
		return 0, err
	}
	return user.Credits, nil
}

// ListTransactions returns a user's ledger entries, newest first.
func (s *CreditService) ListTransactions(userID uint, page, pageSize int) ([]models.CreditTransaction, int64, error) {
	var txns []models.CreditTransaction
	var total int64

	query := s.db.Model(&models.CreditTransaction{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&txns).Error
	return txns, total, err
}
