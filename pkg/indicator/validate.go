package indicator

import (
	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// ValidateBars checks that bars form a usable price series: at least one bar,
// strictly increasing dates, positive prices and non-negative volumes
func ValidateBars(bars []models.PriceBar) error {
	if len(bars) == 0 {
		return &InputError{Index: -1, Err: models.ErrEmptySeries}
	}
	for i := range bars {
		if err := bars[i].Validate(); err != nil {
			return &InputError{Index: i, Err: err}
		}
		if i > 0 && !bars[i].Date.After(bars[i-1].Date) {
			return &InputError{Index: i, Err: models.ErrNonMonotonicDates}
		}
	}
	return nil
}
