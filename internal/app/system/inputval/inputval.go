// internal/app/system/inputval/inputval.go
//
// Package inputval decodes JSON request bodies and checks their shape with
// go-playground/validator. Business rules live in grouprules; this package
// only rejects bodies that cannot be interpreted at all.
package inputval

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes bounds a decoded request body.
const MaxBodyBytes = 1 << 20

// ErrMalformed marks a body that is not valid JSON for the target type.
var ErrMalformed = errors.New("malformed request body")

const notBlankTag = "notblank"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		if s, ok := fl.Field().Interface().(string); ok {
			return strings.TrimSpace(s) != ""
		}
		return false
	})
	return v
}

// FieldErrors maps a JSON field name to what is wrong with it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// Struct validates v against its `validate` tags. It returns FieldErrors
// when any field fails.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = describe(fe)
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read as members[0].role.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", notBlankTag:
		return "is required"
	case "email":
		return "must be an email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// DecodeJSON reads a JSON body into dst and validates it. An empty body is
// accepted and leaves dst at its zero value, so endpoints whose fields are
// all optional can be called without one.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body != nil {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if dec.More() {
			return fmt.Errorf("%w: trailing data", ErrMalformed)
		}
	}
	return Struct(dst)
}
