// Package wizard implements the customer order flow: pick a service path, fill a
// cart, review it, choose a collection slot and submit a single order.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lavapp/pkg/metrics"
	"lavapp/pkg/models"
)

// Step is a stage of the order flow.
type Step int

const (
	StepServiceType Step = iota + 1
	StepItems
	StepReview
	StepCheckout
	StepSubmitted
)

var stepNames = map[Step]string{
	StepServiceType: "service-type",
	StepItems:       "items",
	StepReview:      "review",
	StepCheckout:    "checkout",
	StepSubmitted:   "submitted",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ServiceType is the ordering path.
type ServiceType string

const (
	TypePlans  ServiceType = "plans"
	TypeOneOff ServiceType = "one-off"
)

func (t ServiceType) Valid() bool {
	return t == TypePlans || t == TypeOneOff
}

// Fallbacks used when the customer profile lacks contact details.
const (
	MissingAddress = "Endereço não cadastrado"
	MissingPhone   = "Telefone não cadastrado"
)

var (
	ErrConfirmationRequired = errors.New("switching the service type clears the current order; confirmation required")
	ErrEmptyCart            = errors.New("Please select at least one item before continuing.")
	ErrLoginRequired        = errors.New("please log in or sign up to finish the order")
	ErrSubmitFailed         = errors.New("There was an error creating your order. Please try again.")
	ErrInvalidServiceType   = errors.New("unknown service type")
	ErrServiceTypeRequired  = errors.New("select a service type first")
	ErrInvalidStep          = errors.New("step not reachable")
	ErrItemNotInCart        = errors.New("item not in cart")
	ErrAlreadySubmitted     = errors.New("order already submitted; start a new order")
)

// OrderCreator persists a submitted order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order models.NewOrder) (*models.Order, error)
}

// Wizard is the state of one customer's order flow. It is not safe for
// concurrent use; callers serialize access per client.
type Wizard struct {
	step        Step
	serviceType ServiceType
	cart        Cart
	pickup      Pickup
	lastOrder   *models.Order
}

func New() *Wizard {
	return &Wizard{step: StepServiceType}
}

func (w *Wizard) Step() Step { return w.step }
func (w *Wizard) ServiceType() ServiceType { return w.serviceType }
func (w *Wizard) Items() []CartItem { return w.cart.Items() }
func (w *Wizard) Total() decimal.Decimal { return w.cart.Total() }
func (w *Wizard) Quantity(name string) int { return w.cart.Quantity(name) }
func (w *Wizard) Pickup() Pickup { return w.pickup }
func (w *Wizard) LastOrder() *models.Order { return w.lastOrder }

// SelectServiceType picks the ordering path and moves to item selection.
func (w *Wizard) SelectServiceType(t ServiceType) error {
	return w.SwitchServiceType(t, false)
}

// SwitchServiceType changes the path. With items in the cart a different path
// needs confirmed set, and then empties the cart.
func (w *Wizard) SwitchServiceType(t ServiceType, confirmed bool) error {
	if !t.Valid() {
		return ErrInvalidServiceType
	}
	if w.step == StepSubmitted {
		return ErrAlreadySubmitted
	}
	if t != w.serviceType && !w.cart.IsEmpty() {
		if !confirmed {
			return ErrConfirmationRequired
		}
		w.cart.Clear()
	}
	w.serviceType = t
	w.step = StepItems
	return nil
}

// GoTo moves between steps 1 to 4. Review and checkout need a non-empty cart.
func (w *Wizard) GoTo(step Step) error {
	if w.step == StepSubmitted {
		return ErrAlreadySubmitted
	}
	switch step {
	case StepServiceType:
	case StepItems:
		if w.serviceType == "" {
			return ErrServiceTypeRequired
		}
	case StepReview, StepCheckout:
		if w.cart.IsEmpty() {
			return ErrEmptyCart
		}
	default:
		return ErrInvalidStep
	}
	w.step = step
	return nil
}

func (w *Wizard) editable() error {
	switch w.step {
	case StepItems, StepReview, StepCheckout:
		return nil
	case StepSubmitted:
		return ErrAlreadySubmitted
	default:
		return ErrServiceTypeRequired
	}
}

// AddItem adds one unit of service to the cart.
func (w *Wizard) AddItem(service models.Service) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.cart.Add(service)
	return nil
}

// SetQuantity replaces an item's quantity; zero or less removes it.
func (w *Wizard) SetQuantity(name string, quantity int) error {
	if err := w.editable(); err != nil {
		return err
	}
	if !w.cart.SetQuantity(name, quantity) {
		if quantity <= 0 {
			return nil
		}
		return ErrItemNotInCart
	}
	return nil
}

// SetPickup records the collection slot. It is validated on submit.
func (w *Wizard) SetPickup(p Pickup) error {
	if w.step == StepSubmitted {
		return ErrAlreadySubmitted
	}
	w.pickup = Pickup{Date: strings.TrimSpace(p.Date), Shift: strings.TrimSpace(p.Shift)}
	return nil
}

// Submit turns the cart into an order for user. A nil user gets ErrLoginRequired
// and nothing changes. On a remote failure the wizard stays at checkout with the
// cart intact.
func (w *Wizard) Submit(ctx context.Context, user *models.User, orders OrderCreator, now time.Time) (*models.Order, error) {
	if user == nil {
		return nil, ErrLoginRequired
	}
	if w.step != StepCheckout {
		if w.step == StepSubmitted {
			return nil, ErrAlreadySubmitted
		}
		return nil, ErrInvalidStep
	}
	date, shift, err := w.pickup.validate(now)
	if err != nil {
		return nil, err
	}
	if w.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	address := user.Address
	if address == "" {
		address = MissingAddress
	}
	phone := user.Phone
	if phone == "" {
		phone = MissingPhone
	}

	order, err := orders.CreateOrder(ctx, models.NewOrder{
		CustomerID:     user.ID,
		CustomerName:   user.Name,
		Address:        address,
		Phone:          phone,
		Items:          w.cart.OrderItems(),
		Total:          w.cart.Total(),
		CollectionTime: CollectionTime(date, shift),
	})
	metrics.RecordOrderSubmission(err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	w.lastOrder = order
	w.cart.Clear()
	w.pickup = Pickup{}
	w.step = StepSubmitted
	return order, nil
}

// Reset starts a new order after a submission.
func (w *Wizard) Reset() error {
	if w.step != StepSubmitted {
		return ErrInvalidStep
	}
	*w = Wizard{step: StepServiceType}
	return nil
}

// State is a read-only view of the wizard.
type State struct {
	Step        Step            `json:"step"`
	StepName    string          `json:"stepName"`
	ServiceType ServiceType     `json:"serviceType"`
	Items       []CartItem      `json:"items"`
	Total       decimal.Decimal `json:"total"`
	Pickup      Pickup          `json:"pickup"`
	LastOrder   *models.Order   `json:"lastOrder,omitempty"`
	Shifts      []ShiftOption   `json:"shifts"`
}

// ShiftOption describes a selectable collection window.
type ShiftOption struct {
	Value Shift  `json:"value"`
	Label string `json:"label"`
}

func (w *Wizard) State() State {
	shifts := make([]ShiftOption, 0, len(Shifts))
	for _, s := range Shifts {
		shifts = append(shifts, ShiftOption{Value: s, Label: s.Label()})
	}
	return State{
		Step:        w.step,
		StepName:    w.step.String(),
		ServiceType: w.serviceType,
		Items:       w.cart.Items(),
		Total:       w.cart.Total(),
		Pickup:      w.pickup,
		LastOrder:   w.lastOrder,
		Shifts:      shifts,
	}
}
