package models

// MealType identifies one of the three daily meals served by the mess.
type MealType string

const (
	MealBreakfast MealType = "BREAKFAST"
	MealLunch     MealType = "LUNCH"
	MealDinner    MealType = "DINNER"
)

// MealTypes lists all meal types in serving order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner}

// ParseMealType validates a raw string against the known meal types.
func ParseMealType(s string) (MealType, bool) {
	switch MealType(s) {
	case MealBreakfast, MealLunch, MealDinner:
		return MealType(s), true
	}
	return "", false
}
