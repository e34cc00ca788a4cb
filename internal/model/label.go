package model

// Label holds the measured quantity of every tracked nutrient.
type Label struct {
	Fat          float64
	SaturatedFat float64
	Sugar        float64
	Salt         float64
}

func NewLabel(fat, saturatedFat, sugar, salt float64) Label {
	return Label{
		Fat:          fat,
		SaturatedFat: saturatedFat,
		Sugar:        sugar,
		Salt:         salt,
	}
}

// Value returns the quantity recorded for n. The second result is false for
// nutrients outside the tracked set.
func (l Label) Value(n Nutrient) (float64, bool) {
	switch n {
	case NutrientFat:
		return l.Fat, true
	case NutrientSaturatedFat:
		return l.SaturatedFat, true
	case NutrientSugar:
		return l.Sugar, true
	case NutrientSalt:
		return l.Salt, true
	default:
		return 0, false
	}
}

// Values returns a fresh map with one entry per tracked nutrient.
func (l Label) Values() map[Nutrient]float64 {
	return map[Nutrient]float64{
		NutrientFat:          l.Fat,
		NutrientSaturatedFat: l.SaturatedFat,
		NutrientSugar:        l.Sugar,
		NutrientSalt:         l.Salt,
	}
}
