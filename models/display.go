package models

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BritishEnglish)

// Placeholder is shown for listings that have no images.
var Placeholder = "/static/placeholder-car.jpg"

// ParseNumber reads a number staff typed into a text field, tolerating
// currency symbols, thousands separators and unit suffixes such as "mi".
func ParseNumber(s string) (float64, bool) {
	var b strings.Builder
scan:
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',', r == ' ', r == '£', r == '$', r == '€':
		default:
			if b.Len() > 0 {
				break scan
			}
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (c Car) PriceValue() (float64, bool) {
	return ParseNumber(c.Price)
}

func (c Car) MileageValue() (float64, bool) {
	return ParseNumber(c.Mileage)
}

func (c Car) DoorsValue() (int, bool) {
	v, ok := ParseNumber(c.Doors)
	return int(v), ok
}

// DisplayPrice formats the price as "£12,995", or "POA" when it is not a number.
func (c Car) DisplayPrice() string {
	v, ok := c.PriceValue()
	if !ok {
		return "POA"
	}
	return printer.Sprintf("£%d", int64(v+0.5))
}

// DisplayMileage formats the mileage as "45,000 miles", or "" when unknown.
func (c Car) DisplayMileage() string {
	v, ok := c.MileageValue()
	if !ok {
		return ""
	}
	return printer.Sprintf("%d miles", int64(v))
}

// CoverImage is the first image, or the placeholder for a listing without any.
func (c Car) CoverImage() string {
	if len(c.Images) == 0 {
		return Placeholder
	}
	return c.Images[0]
}
