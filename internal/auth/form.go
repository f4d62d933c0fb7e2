package auth

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SignInForm is what the sign-in page posts.
type SignInForm struct {
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=6"`
}

// The sign-in page only checks for "something@something".
var looseEmail = regexp.MustCompile(`^\S+@\S+$`)

var fieldMessages = map[string]string{
	"email":    "Email tidak valid",
	"password": "Password minimal 6 karakter",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
		return looseEmail.MatchString(fl.Field().String())
	})
	return v
}

// validateForm returns one message per invalid field, keyed by JSON name.
func validateForm(v *validator.Validate, f SignInForm) map[string]string {
	err := v.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"email": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fieldMessages[fe.Field()]
		}
	}
	return out
}
