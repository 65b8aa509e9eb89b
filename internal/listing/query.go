package listing

import (
	"sort"
	"strings"

	"github.com/petermazzocco/car-dealership/models"
)

const (
	SortNewest     = "newest"
	SortPriceAsc   = "price-asc"
	SortPriceDesc  = "price-desc"
	SortMileageAsc = "mileage-asc"
)

// Query narrows and orders a catalog the way the inventory page filters do.
// Zero values match everything.
type Query struct {
	Make         string
	FuelType     string
	Transmission string
	Search       string
	MinPrice     float64
	MaxPrice     float64
	Sort         string
}

// Apply returns the cars matching q in the requested order. cars must already
// be newest first; the input slice is not modified.
func (q Query) Apply(cars []models.Car) []models.Car {
	out := make([]models.Car, 0, len(cars))
	for _, car := range cars {
		if q.matches(car) {
			out = append(out, car)
		}
	}

	switch q.Sort {
	case SortPriceAsc:
		sortByNumber(out, models.Car.PriceValue, false)
	case SortPriceDesc:
		sortByNumber(out, models.Car.PriceValue, true)
	case SortMileageAsc:
		sortByNumber(out, models.Car.MileageValue, false)
	}
	return out
}

func (q Query) matches(car models.Car) bool {
	if q.Make != "" && !strings.EqualFold(q.Make, car.Make) {
		return false
	}
	if q.FuelType != "" && !strings.EqualFold(q.FuelType, car.FuelType) {
		return false
	}
	if q.Transmission != "" && !strings.EqualFold(q.Transmission, car.Transmission) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		hay := strings.ToLower(car.Title + " " + car.Make + " " + car.Color)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	if q.MinPrice > 0 || q.MaxPrice > 0 {
		price, ok := car.PriceValue()
		if !ok {
			return false
		}
		if q.MinPrice > 0 && price < q.MinPrice {
			return false
		}
		if q.MaxPrice > 0 && price > q.MaxPrice {
			return false
		}
	}
	return true
}

// sortByNumber sorts on a parsed text field. Cars whose field does not parse
// go last, in their current order.
func sortByNumber(cars []models.Car, value func(models.Car) (float64, bool), desc bool) {
	sort.SliceStable(cars, func(i, j int) bool {
		a, aok := value(cars[i])
		b, bok := value(cars[j])
		switch {
		case !aok:
			return false
		case !bok:
			return true
		case desc:
			return a > b
		default:
			return a < b
		}
	})
}
