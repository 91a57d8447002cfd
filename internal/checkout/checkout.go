package checkout

import (
	"fmt"

	"etalase/internal/models"
	"etalase/internal/stores"
	"etalase/pkg/notify"

	"github.com/go-playground/validator/v10"
)

// Form carries the shipping and payment fields collected at checkout.
// Payment fields are collected but never verified or charged.
type Form struct {
	FullName      string `json:"fullName" validate:"required,min=2,max=100"`
	Address       string `json:"address" validate:"required,min=5,max=200"`
	City          string `json:"city" validate:"required,min=2,max=100"`
	PostalCode    string `json:"postalCode" validate:"required,min=3,max=10"`
	Country       string `json:"country" validate:"required,min=2,max=100"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=creditCard paypal cash"`
}

// Processor validates checkout forms and turns the current cart into a
// placed order through the session store.
type Processor struct {
	session  *stores.SessionStore
	cart     *stores.CartStore
	bus      *notify.Bus
	validate *validator.Validate
}

// NewProcessor creates a new Processor.
func NewProcessor(session *stores.SessionStore, cart *stores.CartStore, bus *notify.Bus) *Processor {
	return &Processor{
		session:  session,
		cart:     cart,
		bus:      bus,
		validate: validator.New(),
	}
}

// Validate checks the form and returns a field-to-message map, empty when
// the form is acceptable.
func (p *Processor) Validate(form Form) map[string]string {
	err := p.validate.Struct(form)
	if err == nil {
		return map[string]string{}
	}

	errorMessages := make(map[string]string)
	for _, e := range err.(validator.ValidationErrors) {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return errorMessages
}

// PlaceOrder snapshots the current cart into an order draft and submits it.
// The remote write appends the order and clears the cart together; the
// session store takes the server's response as the new state, so the local
// cart empties through the usual projection sync. Returns the order id and
// whether placement succeeded.
func (p *Processor) PlaceOrder(form Form) (string, bool) {
	if errs := p.Validate(form); len(errs) > 0 {
		p.bus.Error("Please fill in all checkout fields correctly")
		return "", false
	}

	items := p.cart.Items()
	if len(items) == 0 {
		p.bus.Error("Your cart is empty")
		return "", false
	}

	draft := stores.OrderDraft{
		Items: items,
		Total: p.cart.CartTotal(),
		ShippingInfo: models.ShippingInfo{
			FullName:   form.FullName,
			Address:    form.Address,
			City:       form.City,
			PostalCode: form.PostalCode,
			Country:    form.Country,
		},
		PaymentMethod: form.PaymentMethod,
	}

	orderID := p.session.AddOrder(draft)
	if orderID == "" {
		return "", false
	}
	return orderID, true
}
