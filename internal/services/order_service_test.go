package services_test

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"ramdom/internal/checkout"
	"ramdom/internal/config"
	"ramdom/internal/domain"
	"ramdom/internal/format"
	"ramdom/internal/services"
	"ramdom/internal/state"
)

var orderOpts = checkout.Options{
	Host:      "api.whatsapp.com",
	Phone:     "+541124661859",
	StoreName: "Fatality Ramdom",
	Money:     format.NewMoney("es-AR"),
}

func validDraft() checkout.Draft {
	return checkout.Draft{
		Name:       "Ana Gómez",
		DNI:        "27111222",
		Email:      "ana@example.com",
		Phone:      "+54 11 4444-0000",
		Address:    "Calle 50 123",
		City:       "La Plata",
		Province:   "Buenos Aires",
		PostalCode: "1900",
	}
}

func TestBeginRequiresItems(t *testing.T) {
	sessions := services.NewSessionService(config.ProfileExtended)
	orders := services.NewOrderService(sessions, orderOpts, true)

	if _, err := orders.Begin("sid"); !errors.Is(err, checkout.ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}
	if _, _, err := orders.Place("sid", validDraft()); !errors.Is(err, checkout.ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}
}

func TestPlaceRejectsMissingFields(t *testing.T) {
	prods := openCatalog(t)
	sessions := services.NewSessionService(config.ProfileExtended)
	orders := services.NewOrderService(sessions, orderOpts, true)
	_, _ = sessions.Add("sid", services.AddRequest{Product: product(t, prods, "4"), Quantity: 1, ColorHex: "#ffffff"})

	d := validDraft()
	d.Email = "not-an-email"
	d.DNI = ""
	_, clean, err := orders.Place("sid", d)
	var fe checkout.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("want FieldErrors, got %v", err)
	}
	if _, ok := fe["email"]; !ok {
		t.Fatalf("email error missing: %v", fe)
	}
	if _, ok := fe["dni"]; !ok {
		t.Fatalf("dni error missing: %v", fe)
	}
	if clean.Name != "Ana Gómez" {
		t.Fatalf("normalised draft lost the name: %+v", clean)
	}
	if sessions.State("sid").Cart.Empty() {
		t.Fatal("cart cleared on invalid submit")
	}
}

func TestPlaceFormatsLinksAndClears(t *testing.T) {
	prods := openCatalog(t)
	sessions := services.NewSessionService(config.ProfileExtended)
	orders := services.NewOrderService(sessions, orderOpts, true)
	_, _ = sessions.Add("sid", services.AddRequest{Product: product(t, prods, "4"), Quantity: 3, ColorHex: "#111111", Size: domain.SizeL})

	if st, err := orders.Begin("sid"); err != nil || st.View != (state.Checkout{}) {
		t.Fatalf("begin: view %v err %v", st.View, err)
	}

	o, _, err := orders.Place("sid", validDraft())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(o.Message, "Total: $48.000,00") {
		t.Fatalf("total missing:\n%s", o.Message)
	}
	if !strings.Contains(o.Message, "| Color: Negro | Talle: L | x3 |") {
		t.Fatalf("line missing:\n%s", o.Message)
	}
	if strings.Contains(o.Message, "Barrio/Zona") {
		t.Fatal("blank neighborhood must be omitted")
	}
	if !strings.HasPrefix(o.Link, "https://api.whatsapp.com/send?phone=") {
		t.Fatalf("link %s", o.Link)
	}
	u, err := url.Parse(o.Link)
	if err != nil {
		t.Fatal(err)
	}
	if u.Query().Get("text") != o.Message {
		t.Fatal("link does not carry the message")
	}
	if o.Lines != 1 || o.ID == "" {
		t.Fatalf("order %+v", o)
	}

	st := sessions.State("sid")
	if !st.Cart.Empty() || st.View != (state.Success{}) {
		t.Fatalf("after checkout: %d lines, view %s", st.Cart.Len(), st.View.Name())
	}
}

func TestBasicProfileSkipsExtendedFields(t *testing.T) {
	prods := openCatalog(t)
	sessions := services.NewSessionService(config.ProfileBasic)
	orders := services.NewOrderService(sessions, orderOpts, false)
	_, _ = sessions.Add("sid", services.AddRequest{Product: product(t, prods, "1"), Quantity: 1, ColorHex: "#ffffff"})

	d := validDraft()
	d.DNI, d.Phone, d.Province = "", "", ""
	o, _, err := orders.Place("sid", d)
	if err != nil {
		t.Fatal(err)
	}
	for _, label := range []string{"DNI:", "Teléfono:", "Provincia:"} {
		if strings.Contains(o.Message, label) {
			t.Fatalf("basic message carries %s", label)
		}
	}
}
