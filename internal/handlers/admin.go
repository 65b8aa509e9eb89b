package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/petermazzocco/car-dealership/internal/apperr"
	"github.com/petermazzocco/car-dealership/internal/auth"
	"github.com/petermazzocco/car-dealership/internal/listing"
)

// MaxUploadMemory bounds the multipart form kept in memory; larger files
// spill to temporary files.
const MaxUploadMemory = 32 << 20

// MaxUploadSize caps the whole add/edit request body, files included.
var MaxUploadSize int64 = 64 << 20

func CreateCarHandler(w http.ResponseWriter, r *http.Request, editor *listing.Editor) {
	acct, _ := auth.AccountFrom(r.Context())
	form, files, _, err := parseListingForm(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	saved, err := editor.Create(r.Context(), acct, form, files)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Car added successfully",
		"car":     view(saved.Car),
	})
}

func UpdateCarHandler(w http.ResponseWriter, r *http.Request, editor *listing.Editor) {
	acct, _ := auth.AccountFrom(r.Context())
	form, files, deleteIdx, err := parseListingForm(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	saved, err := editor.Update(r.Context(), acct, chi.URLParam(r, "id"), form, deleteIdx, files)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Car updated successfully",
		"car":     view(saved.Car),
		"orphans": saved.Orphans,
	})
}

func DeleteCarHandler(w http.ResponseWriter, r *http.Request, editor *listing.Editor) {
	acct, _ := auth.AccountFrom(r.Context())
	saved, err := editor.Delete(r.Context(), acct, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Car deleted successfully",
		"orphans": saved.Orphans,
	})
}

// parseListingForm reads the add/edit form: listing fields, the indices of
// existing images to drop ("deleteImages") and new image files ("images").
func parseListingForm(w http.ResponseWriter, r *http.Request) (listing.Form, []listing.File, []int, error) {
	const op = "handlers.parseListingForm"
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	ct := r.Header.Get("Content-Type")
	var err error
	if strings.HasPrefix(ct, "multipart/form-data") {
		err = r.ParseMultipartForm(MaxUploadMemory)
	} else {
		err = r.ParseForm()
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return listing.Form{}, nil, nil, apperr.Invalid(op, "The upload is too large. Please send fewer or smaller images.")
	}
	if err != nil {
		return listing.Form{}, nil, nil, apperr.Invalid(op, "The form could not be read.")
	}

	form := listing.Form{
		Title:        r.FormValue("title"),
		Make:         r.FormValue("make"),
		Year:         r.FormValue("year"),
		Price:        r.FormValue("price"),
		Mileage:      r.FormValue("mileage"),
		Transmission: r.FormValue("transmission"),
		Color:        r.FormValue("color"),
		EngineSize:   r.FormValue("engineSize"),
		FuelType:     r.FormValue("fuelType"),
		Doors:        r.FormValue("doors"),
		Description:  r.FormValue("description"),
		Features:     splitValues(r.Form["features"]),
		IsIncoming:   checkbox(r.FormValue("isIncoming")),
	}

	var deleteIdx []int
	for _, v := range splitValues(r.Form["deleteImages"]) {
		i, err := strconv.Atoi(v)
		if err != nil {
			return listing.Form{}, nil, nil, apperr.Invalid(op, "Images to delete must be given by position.")
		}
		deleteIdx = append(deleteIdx, i)
	}

	var files []listing.File
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			files = append(files, listing.File{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}
	return form, files, deleteIdx, nil
}

// splitValues accepts repeated fields as well as one comma separated value.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func checkbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
