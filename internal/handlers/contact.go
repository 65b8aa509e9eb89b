package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/petermazzocco/car-dealership/internal/contact"
	"github.com/petermazzocco/car-dealership/internal/listing"
	"github.com/petermazzocco/car-dealership/models"
)

// DefaultInquirySubject is used when a vehicle inquiry arrives without one.
const DefaultInquirySubject = "Vehicle enquiry"

func ContactHandler(w http.ResponseWriter, r *http.Request, relay *contact.Relay) {
	inq, ok := decodeInquiry(w, r)
	if !ok {
		return
	}
	inq.CarID, inq.CarTitle = "", ""
	writeRelayResult(w, relay.Send(r.Context(), inq))
}

// CarInquiryHandler relays a question about one vehicle. The relay prefixes
// the subject with the car's title, so a blank subject gets a neutral default.
func CarInquiryHandler(w http.ResponseWriter, r *http.Request, fetcher *listing.Fetcher, relay *contact.Relay) {
	car, err := fetcher.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	inq, ok := decodeInquiry(w, r)
	if !ok {
		return
	}
	inq.CarID = car.ID
	inq.CarTitle = car.Title
	if strings.TrimSpace(inq.Subject) == "" {
		inq.Subject = DefaultInquirySubject
	}
	writeRelayResult(w, relay.Send(r.Context(), inq))
}

func decodeInquiry(w http.ResponseWriter, r *http.Request) (models.Inquiry, bool) {
	var inq models.Inquiry
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&inq); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "The form could not be read."})
			return inq, false
		}
		return inq, true
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "The form could not be read."})
		return inq, false
	}
	inq = models.Inquiry{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Phone:   r.FormValue("phone"),
		Subject: r.FormValue("subject"),
		Message: r.FormValue("message"),
	}
	return inq, true
}

func writeRelayResult(w http.ResponseWriter, res contact.Result) {
	switch {
	case res.Sent:
		writeJSON(w, http.StatusOK, res)
	case res.Local:
		writeJSON(w, http.StatusBadRequest, res)
	default:
		writeJSON(w, http.StatusBadGateway, res)
	}
}
