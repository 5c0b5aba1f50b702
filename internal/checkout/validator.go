package checkout

import (
	"regexp"
	"strings"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
)

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe  = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	postalRe = regexp.MustCompile(`^[0-9]{5}$`)
)

// Validate maps a delivery form draft to field-level error messages. An
// empty map means the draft is ready to submit. A non-home country is not
// an error; it only flags the order as international shipping.
func Validate(draft domain.CheckoutDraft) map[string]string {
	errs := make(map[string]string)

	email := strings.TrimSpace(draft.Email)
	switch {
	case email == "":
		errs["email"] = "email is required"
	case !emailRe.MatchString(email):
		errs["email"] = "enter a valid email address"
	}

	phone := strings.Join(strings.Fields(draft.Phone), "")
	switch {
	case phone == "":
		errs["phone"] = "phone is required"
	case !phoneRe.MatchString(phone):
		errs["phone"] = "enter a valid phone number"
	}

	requireField(errs, "firstName", draft.FirstName)
	requireField(errs, "lastName", draft.LastName)
	requireField(errs, "country", draft.Country)
	requireField(errs, "city", draft.City)
	requireField(errs, "street", draft.Street)
	requireField(errs, "houseNumber", draft.HouseNumber)

	postal := strings.TrimSpace(draft.PostalCode)
	switch {
	case postal == "":
		errs["postalCode"] = "postal code is required"
	case !postalRe.MatchString(postal):
		errs["postalCode"] = "postal code must be exactly 5 digits"
	}

	// floor, apartment and note are free-form and optional

	return errs
}

func requireField(errs map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = "this field is required"
	}
}
