package listing

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/petermazzocco/car-dealership/models"
)

// Normalize turns a stored document into a fully populated Car. Old records
// may hold a single "image" instead of "images", numbers where text is
// expected, or no timestamp at all, so every field is read defensively.
// It must run on every read: old and new records live side by side.
func Normalize(id string, doc map[string]any) models.Car {
	car := models.Car{
		ID:           id,
		Title:        text(doc["title"]),
		Make:         text(doc["make"]),
		Year:         text(doc["year"]),
		Price:        text(doc["price"]),
		Mileage:      text(doc["mileage"]),
		Transmission: strings.ToLower(text(doc["transmission"])),
		Color:        text(doc["color"]),
		EngineSize:   text(doc["engineSize"]),
		FuelType:     strings.ToLower(text(doc["fuelType"])),
		Doors:        text(doc["doors"]),
		Description:  text(doc["description"]),
		Image:        text(doc["image"]),
		Features:     set(doc["features"]),
		CreatedAt:    timestamp(doc["createdAt"]),
		IsIncoming:   flag(doc["isIncoming"]),
		OwnerID:      text(doc["ownerId"]),
	}
	car.Images = resolveImages(texts(doc["images"]), car.Image)
	return car
}

func resolveImages(images []string, legacy string) []string {
	if len(images) > 0 {
		return images
	}
	if legacy != "" {
		return []string{legacy}
	}
	return []string{}
}

// ToDocument is the stored form of car. The legacy "image" field is not
// written; Images supersedes it.
func ToDocument(car models.Car) map[string]any {
	images := car.Images
	if images == nil {
		images = []string{}
	}
	features := car.Features
	if features == nil {
		features = []string{}
	}
	doc := map[string]any{
		"title":        car.Title,
		"make":         car.Make,
		"year":         car.Year,
		"price":        car.Price,
		"mileage":      car.Mileage,
		"transmission": car.Transmission,
		"color":        car.Color,
		"engineSize":   car.EngineSize,
		"fuelType":     car.FuelType,
		"doors":        car.Doors,
		"description":  car.Description,
		"images":       images,
		"features":     features,
		"isIncoming":   car.IsIncoming,
		"ownerId":      car.OwnerID,
	}
	if car.CreatedAt != nil {
		doc["createdAt"] = car.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return doc
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func texts(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// set is texts without repeats; the first occurrence keeps its place.
func set(v any) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, s := range texts(v) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func flag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	default:
		return false
	}
}

// timestamp accepts RFC3339 text, Unix milliseconds, or an exported
// {seconds, nanoseconds} object. Anything else counts as no timestamp.
func timestamp(v any) *time.Time {
	var ts time.Time
	switch t := v.(type) {
	case time.Time:
		ts = t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		ts = parsed
	case float64:
		ts = time.UnixMilli(int64(t))
	case int64:
		ts = time.UnixMilli(t)
	case map[string]any:
		secs, ok := t["seconds"].(float64)
		if !ok {
			secs, ok = t["_seconds"].(float64)
		}
		if !ok {
			return nil
		}
		nanos, _ := t["nanoseconds"].(float64)
		if nanos == 0 {
			nanos, _ = t["_nanoseconds"].(float64)
		}
		ts = time.Unix(int64(secs), int64(nanos))
	default:
		return nil
	}
	ts = ts.UTC()
	return &ts
}
