package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Drop separators people usually put into ISBN: '978-0-261-10221-7'
// ISBN-10 check digit 'x' is upper-cased so the stored value is canonical
func NormalizeISBN(isbn string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(isbn))
}

// ISBN-10 or ISBN-13 with valid check digit
func ISBN(isbn string) error {
	return validate.Var(isbn, "required,isbn")
}
