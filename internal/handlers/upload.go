package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/services"
)

const multipartMemory = 8 << 20

var errNoFile = errors.New("no file in form")

// parseMultipart limits the body to maxBytes plus some headroom for the
// other parts and parses it.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("File too large or invalid form data"))
		return false
	}
	return true
}

// formImage returns the file sent under field, or errNoFile. The caller
// closes the returned file.
func formImage(r *http.Request, field string) (*services.ImageUpload, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, errNoFile
	}
	if err != nil {
		return nil, nil, err
	}
	return &services.ImageUpload{
		File:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, file, nil
}

// formJSON decodes the JSON part named field. Browsers send it either as a
// plain value or as a Blob, which arrives as a file part.
func formJSON(r *http.Request, field string, v interface{}) error {
	if raw := r.FormValue(field); raw != "" {
		return json.NewDecoder(strings.NewReader(raw)).Decode(v)
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewDecoder(io.LimitReader(file, multipartMemory)).Decode(v)
}

// productRequest reads a listing form, either from a multipart body with a
// "product" part and an optional "imagePath" file, or from a JSON body.
// The returned cleanup must always be called.
func productRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (*models.ProductForm, *services.ImageUpload, func(), bool) {
	noop := func() {}
	var form models.ProductForm

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if !decodeJSON(w, r, &form) {
			return nil, nil, noop, false
		}
		form.Normalize()
		if !validated(w, form.Validate()) {
			return nil, nil, noop, false
		}
		return &form, nil, noop, true
	}

	if !parseMultipart(w, r, maxBytes) {
		return nil, nil, noop, false
	}
	if err := formJSON(r, "product", &form); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid product data"))
		return nil, nil, noop, false
	}
	form.Normalize()
	if !validated(w, form.Validate()) {
		return nil, nil, noop, false
	}

	img, file, err := formImage(r, "imagePath")
	if errors.Is(err, errNoFile) {
		return &form, nil, noop, true
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid image file"))
		return nil, nil, noop, false
	}
	return &form, img, func() { file.Close() }, true
}
