package model

import (
	"errors"
	"fmt"
	"net/netip"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrConstraintViolation is returned when a record is missing a required
// field, carries a malformed value, or breaks a storage constraint.
var ErrConstraintViolation = errors.New("constraint violation")

// ValidationError names the offending field using its view spelling.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConstraintViolation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrConstraintViolation }

// modelValidate is shared by every record kind. Custom tags are registered
// in init.
var modelValidate *validator.Validate

func init() {
	modelValidate = validator.New(validator.WithRequiredStructEnabled())
	modelValidate.RegisterTagNameFunc(jsonFieldName)
	if err := RegisterValidations(modelValidate); err != nil {
		panic(err)
	}
}

// RegisterValidations installs the inventory's custom tags on v so request
// binding and record validation agree.
func RegisterValidations(v *validator.Validate) error {
	custom := []struct {
		tag string
		fn  validator.Func
	}{
		{"ipv4addr", func(fl validator.FieldLevel) bool { return IsIPv4(fl.Field().String()) }},
		{"cidr4", func(fl validator.FieldLevel) bool { return IsCIDR4(fl.Field().String()) }},
		{"macaddr", func(fl validator.FieldLevel) bool { return IsMAC(fl.Field().String()) }},
		{"isodate", func(fl validator.FieldLevel) bool { return IsDate(fl.Field().String()) }},
	}
	for _, c := range custom {
		if err := v.RegisterValidation(c.tag, c.fn); err != nil {
			return fmt.Errorf("registering %s validation: %w", c.tag, err)
		}
	}
	return nil
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func validateStruct(v any) error {
	err := modelValidate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating %T: %w", v, err)
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be an e-mail address"
	case "ipv4addr":
		return "must be a dotted-quad IPv4 address"
	case "cidr4":
		return "must be an IPv4 CIDR block (a.b.c.d/n)"
	case "macaddr":
		return "must be six hex octets separated by ':' or '-'"
	case "isodate":
		return "must be a date (YYYY-MM-DD)"
	}
	return "failed " + fe.Tag() + " validation"
}

// IsIPv4 reports whether s is a dotted-quad IPv4 address.
func IsIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

// IsCIDR4 reports whether s is a.b.c.d/n with octets 0-255 and n 0-32.
func IsCIDR4(s string) bool {
	p, err := netip.ParsePrefix(s)
	return err == nil && p.Addr().Is4()
}

var macPattern = regexp.MustCompile(`^[0-9A-Fa-f]{2}(:[0-9A-Fa-f]{2}){5}$|^[0-9A-Fa-f]{2}(-[0-9A-Fa-f]{2}){5}$`)

// IsMAC reports whether s is six hex octets with a consistent separator.
func IsMAC(s string) bool {
	return macPattern.MatchString(s)
}

func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
