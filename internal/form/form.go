// Package form holds the raw input state of the track and alert forms.
//
// A form keeps whatever the user typed until a submission is accepted. An
// accepted submission hands a typed payload to the caller's callback exactly
// once and then clears every field.
package form

import (
	"net/http"
	"strconv"
	"strings"
)

// Field names shared by the HTML templates and request binding.
const (
	FieldURL         = "url"
	FieldEmail       = "email"
	FieldTargetPrice = "targetPrice"
)

func parsePrice(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func postValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}
