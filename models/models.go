package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Account is a dealership staff member allowed to manage listings.
type Account struct {
	ID           string `gorm:"type:varchar(36);primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"size:255;not null"`
	Email        string         `gorm:"size:255;not null;unique"`
	PasswordHash string         `gorm:"size:255" json:"-"`
}

// CarDocument is the stored form of a listing. The body is schemaless JSON so
// records written by older versions of the site keep loading.
type CarDocument struct {
	ID        string `gorm:"type:varchar(36);primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      datatypes.JSON `gorm:"not null"`
}

func (CarDocument) TableName() string {
	return "cars"
}

const (
	TransmissionManual    = "manual"
	TransmissionAutomatic = "automatic"

	FuelPetrol   = "petrol"
	FuelDiesel   = "diesel"
	FuelElectric = "electric"
	FuelHybrid   = "hybrid"
)

// Car is a vehicle listing as the rest of the service sees it. Every field is
// always populated; numeric values stay text exactly as staff entered them.
type Car struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Make         string     `json:"make"`
	Year         string     `json:"year"`
	Price        string     `json:"price"`
	Mileage      string     `json:"mileage"`
	Transmission string     `json:"transmission"`
	Color        string     `json:"color"`
	EngineSize   string     `json:"engineSize"`
	FuelType     string     `json:"fuelType"`
	Doors        string     `json:"doors"`
	Description  string     `json:"description"`
	Images       []string   `json:"images"`
	Image        string     `json:"image"`
	Features     []string   `json:"features"`
	CreatedAt    *time.Time `json:"createdAt"`
	IsIncoming   bool       `json:"isIncoming"`
	OwnerID      string     `json:"ownerId"`
}

// Inquiry is a contact form submission. It is relayed by email and never stored.
type Inquiry struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	CarID    string `json:"carId,omitempty"`
	CarTitle string `json:"carTitle,omitempty"`
}
