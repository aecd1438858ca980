package server

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

const maxFormBytes = 64 << 10

var validate = newValidator()

// newValidator reports fields by their form name (emp_id) rather than the
// Go field name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// bindForm decodes the request body's form fields into dst and validates
// it. Values are trimmed, so a blank field counts as missing. On failure
// it writes a 400 page and returns false.
func (this *Server) bindForm(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		this.render(w, r, http.StatusBadRequest, "error.html", errorPage{
			Title:   "Bad request",
			Message: "The form could not be read.",
		})
		return false
	}

	values := make(map[string]any, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			values[k] = strings.TrimSpace(v[0])
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  dst,
		TagName: "form",
	})
	if err != nil {
		this.log.Error("form decoder: %v", err)
		this.render(w, r, http.StatusInternalServerError, "error.html", errorPage{Title: "Internal error"})
		return false
	}
	if err := decoder.Decode(values); err != nil {
		this.render(w, r, http.StatusBadRequest, "error.html", errorPage{
			Title:   "Bad request",
			Message: "The form could not be read.",
		})
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			this.log.Error("validate form: %v", err)
			this.render(w, r, http.StatusBadRequest, "error.html", errorPage{Title: "Bad request"})
			return false
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		this.render(w, r, http.StatusBadRequest, "error.html", errorPage{
			Title:   "Missing fields",
			Message: "Please fill in every field.",
			Fields:  fields,
		})
		return false
	}
	return true
}
