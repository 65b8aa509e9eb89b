package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/petermazzocco/car-dealership/internal/listing"
	"github.com/petermazzocco/car-dealership/models"
)

// carView is a listing plus the display values the site renders.
type carView struct {
	models.Car
	DisplayPrice   string `json:"displayPrice"`
	DisplayMileage string `json:"displayMileage"`
	CoverImage     string `json:"coverImage"`
}

func view(car models.Car) carView {
	return carView{
		Car:            car,
		DisplayPrice:   car.DisplayPrice(),
		DisplayMileage: car.DisplayMileage(),
		CoverImage:     car.CoverImage(),
	}
}

func views(cars []models.Car) []carView {
	out := make([]carView, 0, len(cars))
	for _, c := range cars {
		out = append(out, view(c))
	}
	return out
}

// ListCarsHandler serves the inventory page: every listing, filtered and
// sorted by the query string.
func ListCarsHandler(w http.ResponseWriter, r *http.Request, fetcher *listing.Fetcher) {
	q := r.URL.Query()
	query := listing.Query{
		Make:         q.Get("make"),
		FuelType:     q.Get("fuelType"),
		Transmission: q.Get("transmission"),
		Search:       q.Get("q"),
		Sort:         q.Get("sort"),
	}
	query.MinPrice, _ = strconv.ParseFloat(q.Get("minPrice"), 64)
	query.MaxPrice, _ = strconv.ParseFloat(q.Get("maxPrice"), 64)

	cars := query.Apply(fetcher.All(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{
		"cars":  views(cars),
		"count": len(cars),
	})
}

func IncomingCarsHandler(w http.ResponseWriter, r *http.Request, fetcher *listing.Fetcher) {
	cars := fetcher.Incoming(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"cars":  views(cars),
		"count": len(cars),
	})
}

func CarouselHandler(w http.ResponseWriter, r *http.Request, fetcher *listing.Fetcher) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 20 {
		limit = 5
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cars": views(fetcher.Carousel(r.Context(), limit)),
	})
}

func GetCarHandler(w http.ResponseWriter, r *http.Request, fetcher *listing.Fetcher) {
	car, err := fetcher.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(car))
}
