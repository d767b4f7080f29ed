package web

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Pre-submit form rules, matching what the billing API enforces server-side.
var (
	holderNameRe = regexp.MustCompile(`^[A-Za-zÀ-ÿ\s]+$`)
	cardNumberRe = regexp.MustCompile(`^\d{12,19}$`)
	expDateRe    = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvcRe        = regexp.MustCompile(`^\d{3,4}$`)
)

type formValidator struct {
	validate *validator.Validate
}

func newFormValidator() *formValidator {
	v := validator.New()

	// Report fields by their json names so errors map onto form fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegex := func(tag string, re *regexp.Regexp) {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}
	mustRegex("holdername", holderNameRe)
	mustRegex("cardnumber", cardNumberRe)
	mustRegex("expdate", expDateRe)
	mustRegex("cvc", cvcRe)

	return &formValidator{validate: v}
}

// Format-failure messages per field. Required failures get their own channel
// below so an empty email reads "required", not "invalid".
var fieldMessages = map[string]string{
	"email":       "Invalid email address",
	"client_name": "Only letters are allowed",
	"card_number": "Card number must have 12 to 19 digits",
	"expire_date": "Expiry must be in MM/YY format",
	"cvc":         "CVC must have 3 or 4 digits",
}

var requiredMessages = map[string]string{
	"card_flag_id": "Select a card network",
}

// check validates a form struct and returns per-field messages, empty when
// the form is valid.
func (f *formValidator) check(form any) map[string][]string {
	err := f.validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string][]string{"_": {"invalid form"}}
	}

	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		var msg string
		if fe.Tag() == "required" {
			msg = requiredMessages[field]
			if msg == "" {
				msg = "This field is required"
			}
		} else {
			msg = fieldMessages[field]
			if msg == "" {
				msg = "Invalid value"
			}
		}
		out[field] = append(out[field], msg)
	}
	return out
}
