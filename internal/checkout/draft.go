// Package checkout validates the shipping form and turns a cart snapshot into
// the pre-filled order message handed off to the messaging provider.
package checkout

import (
	"errors"
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"ramdom/internal/validate"
)

var ErrEmptyCart = errors.New("checkout: empty cart")

// Draft is the shipping/contact form. Neighborhood is optional; DNI, Phone,
// Province and Neighborhood are only collected by the extended form.
type Draft struct {
	Name         string `form:"name"`
	DNI          string `form:"dni"`
	Email        string `form:"email"`
	Phone        string `form:"phone"`
	Address      string `form:"address"`
	Neighborhood string `form:"neighborhood"`
	City         string `form:"city"`
	Province     string `form:"province"`
	PostalCode   string `form:"zip"`
}

// FieldErrors maps a form field to a user-facing message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "checkout: invalid " + strings.Join(keys, ", ")
}

var strict = bluemonday.StrictPolicy()

// clean strips markup from free text; the message is plain text so entities
// are unescaped again.
func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Validate checks the draft for the chosen form and returns it normalised.
// Fields the form does not collect are cleared.
func Validate(d Draft, extended bool) (Draft, FieldErrors) {
	errs := FieldErrors{}
	var out Draft
	var ok bool

	if out.Name, ok = validate.Name(clean(d.Name)); !ok {
		errs["name"] = "Ingresá tu nombre completo"
	}
	if out.Email, ok = validate.Email(d.Email); !ok {
		errs["email"] = "Email inválido"
	}
	if out.Address, ok = validate.Text(clean(d.Address), 120); !ok {
		errs["address"] = "Ingresá una dirección"
	}
	if out.City, ok = validate.Text(clean(d.City), 60); !ok {
		errs["city"] = "Ingresá tu ciudad"
	}
	if out.PostalCode, ok = validate.PostalCode(d.PostalCode); !ok {
		errs["zip"] = "Código postal inválido"
	}
	if extended {
		if out.DNI, ok = validate.DNI(d.DNI); !ok {
			errs["dni"] = "DNI inválido"
		}
		if out.Phone, ok = validate.Phone(d.Phone); !ok {
			errs["phone"] = "Teléfono inválido"
		}
		if out.Province, ok = validate.Text(clean(d.Province), 60); !ok {
			errs["province"] = "Elegí una provincia"
		}
		if out.Neighborhood, ok = validate.Optional(clean(d.Neighborhood), 60); !ok {
			errs["neighborhood"] = "Barrio demasiado largo"
		}
	}
	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

// Provinces feeds the province select of the extended form.
var Provinces = []string{
	"Buenos Aires", "CABA", "Catamarca", "Chaco", "Chubut", "Córdoba", "Corrientes",
	"Entre Ríos", "Formosa", "Jujuy", "La Pampa", "La Rioja", "Mendoza", "Misiones",
	"Neuquén", "Río Negro", "Salta", "San Juan", "San Luis", "Santa Cruz", "Santa Fe",
	"Santiago del Estero", "Tierra del Fuego", "Tucumán",
}
