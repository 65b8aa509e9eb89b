package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/petermazzocco/car-dealership/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// Record is a stored car document before normalization.
type Record struct {
	ID  string
	Doc map[string]any
}

// Cars keeps listing documents in the "cars" table as JSON bodies.
type Cars struct {
	db *gorm.DB
}

func NewCars(db *gorm.DB) *Cars {
	return &Cars{db: db}
}

func (s *Cars) All(ctx context.Context) ([]Record, error) {
	var docs []models.CarDocument
	if err := s.db.WithContext(ctx).Order("id").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("cars.All: %w", err)
	}
	return decodeAll(docs)
}

// Incoming returns documents whose isIncoming flag is true, stored either as
// a JSON bool or as the string "true". Ordering is left to the caller.
func (s *Cars) Incoming(ctx context.Context) ([]Record, error) {
	var docs []models.CarDocument
	err := s.db.WithContext(ctx).
		Where(datatypes.JSONQuery("data").Equals(true, "isIncoming")).
		Or(datatypes.JSONQuery("data").Equals("true", "isIncoming")).
		Order("id").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("cars.Incoming: %w", err)
	}
	return decodeAll(docs)
}

func (s *Cars) Get(ctx context.Context, id string) (Record, error) {
	var doc models.CarDocument
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("cars.Get: %w", err)
	}
	return decode(doc)
}

// Set writes the whole document for id, replacing whatever was stored.
func (s *Cars) Set(ctx context.Context, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cars.Set: encode: %w", err)
	}
	doc := models.CarDocument{ID: id, Data: datatypes.JSON(raw)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("cars.Set: %w", err)
	}
	return nil
}

func (s *Cars) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.CarDocument{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("cars.Delete: %w", err)
	}
	return nil
}

func decodeAll(docs []models.CarDocument) ([]Record, error) {
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		rec, err := decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func decode(d models.CarDocument) (Record, error) {
	data := map[string]any{}
	if len(d.Data) > 0 {
		if err := json.Unmarshal(d.Data, &data); err != nil {
			return Record{}, fmt.Errorf("cars: decode %s: %w", d.ID, err)
		}
	}
	return Record{ID: d.ID, Doc: data}, nil
}
