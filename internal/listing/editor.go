package listing

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/petermazzocco/car-dealership/internal/apperr"
	"github.com/petermazzocco/car-dealership/internal/auth"
	"github.com/petermazzocco/car-dealership/internal/store"
	"github.com/petermazzocco/car-dealership/models"
)

// Form holds the editable fields of a listing as staff submitted them.
type Form struct {
	Title        string
	Make         string
	Year         string
	Price        string
	Mileage      string
	Transmission string
	Color        string
	EngineSize   string
	FuelType     string
	Doors        string
	Description  string
	Features     []string
	IsIncoming   bool
}

func (f Form) validate(op string) error {
	if strings.TrimSpace(f.Title) == "" {
		return apperr.Invalid(op, "Title is required.")
	}
	switch strings.ToLower(strings.TrimSpace(f.Transmission)) {
	case "", models.TransmissionManual, models.TransmissionAutomatic:
	default:
		return apperr.Invalid(op, "Transmission must be manual or automatic.")
	}
	switch strings.ToLower(strings.TrimSpace(f.FuelType)) {
	case "", models.FuelPetrol, models.FuelDiesel, models.FuelElectric, models.FuelHybrid:
	default:
		return apperr.Invalid(op, "Fuel type must be petrol, diesel, electric or hybrid.")
	}
	numeric := []struct{ name, value string }{{"Price", f.Price}, {"Mileage", f.Mileage}, {"Doors", f.Doors}}
	for _, n := range numeric {
		if strings.TrimSpace(n.value) == "" {
			continue
		}
		if _, ok := models.ParseNumber(n.value); !ok {
			return apperr.Invalid(op, n.name+" must be a number.")
		}
	}
	return nil
}

// apply overwrites every editable field of car with the form's values.
func (f Form) apply(car *models.Car) {
	car.Title = strings.TrimSpace(f.Title)
	car.Make = strings.TrimSpace(f.Make)
	car.Year = strings.TrimSpace(f.Year)
	car.Price = strings.TrimSpace(f.Price)
	car.Mileage = strings.TrimSpace(f.Mileage)
	car.Transmission = strings.ToLower(strings.TrimSpace(f.Transmission))
	car.Color = strings.TrimSpace(f.Color)
	car.EngineSize = strings.TrimSpace(f.EngineSize)
	car.FuelType = strings.ToLower(strings.TrimSpace(f.FuelType))
	car.Doors = strings.TrimSpace(f.Doors)
	car.Description = strings.TrimSpace(f.Description)
	car.Features = set(f.Features)
	car.IsIncoming = f.IsIncoming
}

// Saved is the result of a write. Orphans lists image URLs that were removed
// from the listing but whose blobs could not be deleted.
type Saved struct {
	Car     models.Car
	Orphans []string
}

// Editor runs the staff add, edit and delete flows.
//
// Writes are last-writer-wins: two staff saving the same listing overwrite
// each other. Uploads and the document write are separate steps, so a crash
// between them can leave blobs nothing references.
type Editor struct {
	store      Store
	uploader   *Uploader
	reconciler *Reconciler
	now        func() time.Time
	newID      func() string
}

func NewEditor(s Store, u *Uploader, r *Reconciler) *Editor {
	return &Editor{store: s, uploader: u, reconciler: r, now: time.Now, newID: uuid.NewString}
}

// Create uploads the images and stores a new listing owned by acct. If any
// upload fails nothing is stored.
func (e *Editor) Create(ctx context.Context, acct auth.Account, form Form, files []File) (Saved, error) {
	const op = "listing.Create"
	if acct.ID == "" {
		return Saved{}, apperr.Unauthorized(op, "Please sign in to add a car.")
	}
	if err := form.validate(op); err != nil {
		return Saved{}, err
	}

	now := e.now().UTC()
	car := models.Car{ID: e.newID(), OwnerID: acct.ID, CreatedAt: &now}
	form.apply(&car)

	urls, err := e.uploader.Upload(ctx, car.ID, files)
	if err != nil {
		return Saved{}, apperr.Upstream(op, err)
	}
	car.Images = urls

	if err := e.store.Set(ctx, car.ID, ToDocument(car)); err != nil {
		e.reconciler.DeleteBlobs(ctx, urls)
		return Saved{}, apperr.Upstream(op, err)
	}
	log.Printf("Listing %s created by %s with %d images", car.ID, acct.ID, len(urls))
	return Saved{Car: car, Orphans: []string{}}, nil
}

// Update overwrites a listing's fields, drops the images at deleteIdx and
// appends newly uploaded files. The new document is written before removed
// blobs are deleted, so a failure part way leaves unreferenced blobs rather
// than a listing pointing at missing images.
func (e *Editor) Update(ctx context.Context, acct auth.Account, id string, form Form, deleteIdx []int, files []File) (Saved, error) {
	const op = "listing.Update"
	car, err := e.load(ctx, op, acct, id)
	if err != nil {
		return Saved{}, err
	}
	if err := form.validate(op); err != nil {
		return Saved{}, err
	}
	form.apply(&car)

	removal := Partition(car.Images, deleteIdx)
	added, err := e.uploader.Upload(ctx, car.ID, files)
	if err != nil {
		return Saved{}, apperr.Upstream(op, err)
	}
	car.Images = append(removal.Kept, added...)

	if err := e.store.Set(ctx, car.ID, ToDocument(car)); err != nil {
		e.reconciler.DeleteBlobs(ctx, added)
		return Saved{}, apperr.Upstream(op, err)
	}
	orphans := e.reconciler.DeleteBlobs(ctx, removal.Removed)
	log.Printf("Listing %s updated by %s: %d removed, %d added, %d orphaned", car.ID, acct.ID, len(removal.Removed), len(added), len(orphans))
	return Saved{Car: car, Orphans: orphans}, nil
}

// Delete removes a listing's image blobs, then the listing itself.
func (e *Editor) Delete(ctx context.Context, acct auth.Account, id string) (Saved, error) {
	const op = "listing.Delete"
	car, err := e.load(ctx, op, acct, id)
	if err != nil {
		return Saved{}, err
	}

	orphans := e.reconciler.DeleteBlobs(ctx, car.Images)
	if err := e.store.Delete(ctx, car.ID); err != nil {
		return Saved{}, apperr.Upstream(op, err)
	}
	log.Printf("Listing %s deleted by %s, %d orphaned images", car.ID, acct.ID, len(orphans))
	return Saved{Car: car, Orphans: orphans}, nil
}

// load reads a listing and checks acct may change it.
func (e *Editor) load(ctx context.Context, op string, acct auth.Account, id string) (models.Car, error) {
	if acct.ID == "" {
		return models.Car{}, apperr.Unauthorized(op, "Please sign in to manage listings.")
	}
	rec, err := e.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Car{}, apperr.NotFound(op, "This car is no longer listed.")
	}
	if err != nil {
		return models.Car{}, apperr.Upstream(op, err)
	}
	car := Normalize(rec.ID, rec.Doc)
	if !acct.Owns(car.OwnerID) {
		return models.Car{}, apperr.Unauthorized(op, "You can only change listings you created.")
	}
	return car, nil
}
