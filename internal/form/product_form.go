package form

import (
	"net/http"

	"github.com/user/pricepulse-web/internal/entity"
)

// ProductForm collects a product URL and an optional alert.
type ProductForm struct {
	URL         string
	Email       string
	TargetPrice string
}

// ProductFormFromRequest binds the posted fields of r.
func ProductFormFromRequest(r *http.Request) ProductForm {
	return ProductForm{
		URL:         postValue(r, FieldURL),
		Email:       postValue(r, FieldEmail),
		TargetPrice: postValue(r, FieldTargetPrice),
	}
}

// Payload converts the raw fields. ok is false when the URL is empty or a
// non-empty target price is not a number.
func (f *ProductForm) Payload() (entity.TrackRequest, bool) {
	if f.URL == "" {
		return entity.TrackRequest{}, false
	}
	req := entity.TrackRequest{URL: f.URL, Email: f.Email}
	if f.TargetPrice != "" {
		v, ok := parsePrice(f.TargetPrice)
		if !ok {
			return entity.TrackRequest{}, false
		}
		req.TargetPrice = &v
	}
	return req, true
}

// Submit invokes onSubmit once with the payload and clears the form. When the
// input is not acceptable nothing happens and the values are kept.
func (f *ProductForm) Submit(onSubmit func(entity.TrackRequest)) bool {
	req, ok := f.Payload()
	if !ok {
		return false
	}
	onSubmit(req)
	f.Clear()
	return true
}

func (f *ProductForm) Clear() {
	*f = ProductForm{}
}
