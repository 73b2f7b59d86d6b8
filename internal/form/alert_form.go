package form

import "net/http"

// AlertPayload is what an accepted AlertForm emits.
type AlertPayload struct {
	Email       string
	TargetPrice float64
}

// AlertForm collects the email and target price of a price alert.
type AlertForm struct {
	Email       string
	TargetPrice string
}

// AlertFormFromRequest binds the posted fields of r.
func AlertFormFromRequest(r *http.Request) AlertForm {
	return AlertForm{
		Email:       postValue(r, FieldEmail),
		TargetPrice: postValue(r, FieldTargetPrice),
	}
}

// Payload converts the raw fields. Both are required.
func (f *AlertForm) Payload() (AlertPayload, bool) {
	if f.Email == "" || f.TargetPrice == "" {
		return AlertPayload{}, false
	}
	v, ok := parsePrice(f.TargetPrice)
	if !ok {
		return AlertPayload{}, false
	}
	return AlertPayload{Email: f.Email, TargetPrice: v}, true
}

// Submit invokes onSubmit once with the payload and clears the form. When the
// input is not acceptable nothing happens and the values are kept.
func (f *AlertForm) Submit(onSubmit func(AlertPayload)) bool {
	p, ok := f.Payload()
	if !ok {
		return false
	}
	onSubmit(p)
	f.Clear()
	return true
}

func (f *AlertForm) Clear() {
	*f = AlertForm{}
}
