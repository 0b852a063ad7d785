package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"printcalc/internal/order"
	"printcalc/internal/pricing"
)

// field accepts a JSON string, number, bool or null and keeps its text form,
// so "3", 3 and "3,5" all go through the same permissive parser.
type field string

func (f *field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = field(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("unexpected %s value", data[:1])
	default:
		*f = field(data)
	}
	return nil
}

// quoteRequest carries the calculator form as typed.
type quoteRequest struct {
	Material string `json:"material"`
	Width    field  `json:"width"`
	Height   field  `json:"height"`
	Quantity field  `json:"quantity"`
	Grommets field  `json:"grommets"`
}

func (q quoteRequest) params(defaultMaterial string) pricing.Params {
	material := q.Material
	if material == "" {
		material = defaultMaterial
	}
	return pricing.Params{
		MaterialID: material,
		Width:      pricing.ParseDimension(string(q.Width)),
		Height:     pricing.ParseDimension(string(q.Height)),
		Quantity:   pricing.ParseQuantity(string(q.Quantity)),
		Grommets:   pricing.ParseGrommets(string(q.Grommets)),
	}
}

type orderRequest struct {
	quoteRequest
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Comment string `json:"comment"`
}

func (o orderRequest) contact() order.Contact {
	return order.Contact{
		Name:    o.Name,
		Phone:   o.Phone,
		Email:   o.Email,
		Comment: o.Comment,
	}
}

const maxBodyBytes = 1 << 16

// decodeOrder reads a JSON body or a url-encoded form.
func decodeOrder(w http.ResponseWriter, r *http.Request) (orderRequest, error) {
	var req orderRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && err != http.ErrNotMultipart {
			return req, fmt.Errorf("invalid form: %w", err)
		}
		req.Material = r.PostFormValue("material")
		req.Width = field(r.PostFormValue("width"))
		req.Height = field(r.PostFormValue("height"))
		req.Quantity = field(r.PostFormValue("quantity"))
		req.Grommets = field(r.PostFormValue("grommets"))
		req.Name = r.PostFormValue("name")
		req.Phone = r.PostFormValue("phone")
		req.Email = r.PostFormValue("email")
		req.Comment = r.PostFormValue("comment")
		return req, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	return req, nil
}
