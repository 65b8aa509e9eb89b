package listing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmptyDocumentIsFullyPopulated(t *testing.T) {
	car := Normalize("c1", map[string]any{})

	assert.Equal(t, "c1", car.ID)
	assert.Equal(t, "", car.Title)
	assert.NotNil(t, car.Images)
	assert.Empty(t, car.Images)
	assert.NotNil(t, car.Features)
	assert.Empty(t, car.Features)
	assert.Nil(t, car.CreatedAt)
	assert.False(t, car.IsIncoming)
	assert.Equal(t, "/static/placeholder-car.jpg", car.CoverImage())
}

func TestNormalizeImagePolicy(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want []string
	}{
		{
			name: "legacy image only",
			doc:  map[string]any{"image": "https://cdn/a.jpg"},
			want: []string{"https://cdn/a.jpg"},
		},
		{
			name: "legacy image with empty images",
			doc:  map[string]any{"image": "https://cdn/a.jpg", "images": []any{}},
			want: []string{"https://cdn/a.jpg"},
		},
		{
			name: "images win over legacy",
			doc:  map[string]any{"image": "https://cdn/old.jpg", "images": []any{"https://cdn/1.jpg", "https://cdn/2.jpg"}},
			want: []string{"https://cdn/1.jpg", "https://cdn/2.jpg"},
		},
		{
			name: "blank legacy image",
			doc:  map[string]any{"image": "  "},
			want: []string{},
		},
		{
			name: "neither",
			doc:  map[string]any{"title": "Golf"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize("id", tt.doc).Images
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("images mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeCoercesLooseTypes(t *testing.T) {
	car := Normalize("c2", map[string]any{
		"title":        "Ford Focus",
		"price":        float64(8995),
		"mileage":      "42,000",
		"doors":        float64(5),
		"transmission": "Manual",
		"fuelType":     "PETROL",
		"isIncoming":   "true",
		"features":     []any{"Bluetooth", "", float64(2), " Bluetooth "},
		"createdAt":    "2024-03-01T10:00:00Z",
		"ownerId":      "U1",
	})

	assert.Equal(t, "8995", car.Price)
	assert.Equal(t, "42,000", car.Mileage)
	assert.Equal(t, "5", car.Doors)
	assert.Equal(t, "manual", car.Transmission)
	assert.Equal(t, "petrol", car.FuelType)
	assert.True(t, car.IsIncoming)
	assert.Equal(t, []string{"Bluetooth", "2"}, car.Features)
	assert.Equal(t, "U1", car.OwnerID)
	require.NotNil(t, car.CreatedAt)
	assert.True(t, car.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
}

func TestNormalizeKeepsRepeatedImages(t *testing.T) {
	car := Normalize("c3", map[string]any{"images": []any{"a.jpg", "b.jpg", "a.jpg"}})

	assert.Equal(t, []string{"a.jpg", "b.jpg", "a.jpg"}, car.Images)
}

func TestNormalizeTimestampShapes(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		v    any
		ok   bool
	}{
		{"rfc3339", "2024-01-01T00:00:00Z", true},
		{"unix millis", float64(want.UnixMilli()), true},
		{"seconds object", map[string]any{"seconds": float64(want.Unix()), "nanoseconds": float64(0)}, true},
		{"exported seconds object", map[string]any{"_seconds": float64(want.Unix())}, true},
		{"garbage", "yesterday", false},
		{"missing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize("id", map[string]any{"createdAt": tt.v}).CreatedAt
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, got.Equal(want), "got %v", got)
		})
	}
}

func TestToDocumentDropsLegacyImage(t *testing.T) {
	car := Normalize("c3", map[string]any{"title": "Polo", "image": "https://cdn/a.jpg"})
	doc := ToDocument(car)

	_, hasLegacy := doc["image"]
	assert.False(t, hasLegacy)
	assert.Equal(t, []string{"https://cdn/a.jpg"}, doc["images"])

	again := Normalize("c3", doc)
	assert.Equal(t, car.Images, again.Images)
	assert.Equal(t, "Polo", again.Title)
}
