package listing

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"

	"github.com/petermazzocco/car-dealership/internal/apperr"
	"github.com/petermazzocco/car-dealership/internal/store"
	"github.com/petermazzocco/car-dealership/models"
)

// Store is the document collection listings live in.
type Store interface {
	All(ctx context.Context) ([]store.Record, error)
	Incoming(ctx context.Context) ([]store.Record, error)
	Get(ctx context.Context, id string) (store.Record, error)
	Set(ctx context.Context, id string, data map[string]any) error
	Delete(ctx context.Context, id string) error
}

// Blobs is the object store listing images are kept in.
type Blobs interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, error)
}

// Fetcher serves the public catalog reads.
type Fetcher struct {
	store Store
}

func NewFetcher(s Store) *Fetcher {
	return &Fetcher{store: s}
}

// All returns every listing, newest first. A store failure is logged and
// yields an empty catalog so pages render their empty state.
func (f *Fetcher) All(ctx context.Context) []models.Car {
	recs, err := f.store.All(ctx)
	if err != nil {
		log.Println("Failed to fetch cars:", err)
		return []models.Car{}
	}
	return normalizeSorted(recs)
}

// Incoming returns listings flagged as arriving soon, newest first. The
// store filters on the flag alone; ordering happens here since filtering and
// ordering together would need a composite index.
func (f *Fetcher) Incoming(ctx context.Context) []models.Car {
	recs, err := f.store.Incoming(ctx)
	if err != nil {
		log.Println("Failed to fetch incoming cars:", err)
		return []models.Car{}
	}
	return normalizeSorted(recs)
}

// Get returns one listing or an apperr NotFound.
func (f *Fetcher) Get(ctx context.Context, id string) (models.Car, error) {
	rec, err := f.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Car{}, apperr.NotFound("listing.Get", "This car is no longer listed.")
	}
	if err != nil {
		return models.Car{}, apperr.Upstream("listing.Get", err)
	}
	return Normalize(rec.ID, rec.Doc), nil
}

// Carousel returns up to n of the newest in-stock listings that have photos.
func (f *Fetcher) Carousel(ctx context.Context, n int) []models.Car {
	out := []models.Car{}
	for _, car := range f.All(ctx) {
		if len(out) == n {
			break
		}
		if car.IsIncoming || len(car.Images) == 0 {
			continue
		}
		out = append(out, car)
	}
	return out
}

func normalizeSorted(recs []store.Record) []models.Car {
	cars := make([]models.Car, 0, len(recs))
	for _, r := range recs {
		cars = append(cars, Normalize(r.ID, r.Doc))
	}
	SortNewestFirst(cars)
	return cars
}

// SortNewestFirst orders the dated cars by CreatedAt descending. Cars without
// a timestamp keep the positions they were encountered in; the dated cars are
// sorted among themselves and written back into the remaining slots.
func SortNewestFirst(cars []models.Car) {
	var slots []int
	var dated []models.Car
	for i, c := range cars {
		if c.CreatedAt != nil {
			slots = append(slots, i)
			dated = append(dated, c)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].CreatedAt.After(*dated[j].CreatedAt)
	})
	for k, i := range slots {
		cars[i] = dated[k]
	}
}
