// Package form decodes submitted HTML forms into typed values.
//
// Every form is parsed by a pure function that returns the decoded value
// together with the field errors found while decoding and validating it.
package form

import (
	"errors"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// TimestampLayout is the wire format of datetime-local inputs.
const TimestampLayout = "2006-01-02T15:04"

// Kind tells the event detail page which of its forms was submitted.
type Kind string

const (
	KindComment Kind = "comment"
	KindBooking Kind = "booking"
)

// Errors maps a form field to the message shown for it.
type Errors map[string]string

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Messages returns the messages ordered by field name.
func (e Errors) Messages() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return msgs
}

// messages holds the user-facing text per field. A "field.tag" key overrides
// the field default for one validation tag.
type messages map[string]string

func (m messages) lookup(field, tag string) string {
	if msg, ok := m[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}
	return "Invalid value for " + field
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// values keeps the first non-blank value of every key, trimmed.
func values(src url.Values) map[string]any {
	out := make(map[string]any, len(src))
	for k, vs := range src {
		if len(vs) == 0 {
			continue
		}
		if v := strings.TrimSpace(vs[0]); v != "" {
			out[k] = v
		}
	}
	return out
}

func decodeInto(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeHookFunc(TimestampLayout),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// decode fills a T from src and validates it. Fields that fail to convert
// are reported individually and are not validated again.
func decode[T any](src url.Values, msgs messages) (T, Errors) {
	var out T
	errs := Errors{}

	in := values(src)
	if err := decodeInto(in, &out); err != nil {
		// mapstructure reports conversion failures as one joined error, so
		// decode each key alone to learn which ones are bad.
		for k, v := range in {
			var single T
			if decodeInto(map[string]any{k: v}, &single) != nil {
				errs.Add(k, msgs.lookup(k, "type"))
				delete(in, k)
			}
		}
		out = *new(T)
		_ = decodeInto(in, &out)
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs.Add("form", err.Error())
			return out, errs
		}
		for _, fe := range verrs {
			errs.Add(fe.Field(), msgs.lookup(fe.Field(), fe.Tag()))
		}
	}
	return out, errs
}
