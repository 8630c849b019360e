// README: Booking aggregate, status flow and simulated payment methods.
package booking

import (
	"errors"
	"strings"
	"time"

	"carrental/internal/types"
)

var (
	ErrNotFound       = errors.New("booking not found")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidState   = errors.New("invalid status transition")
	ErrConflict       = errors.New("booking status conflict")
	ErrCarUnavailable = errors.New("car is not available for these dates")
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllowedTransitions is the booking status flow. Completed and cancelled are final.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Holds reports whether a booking in this status blocks the car for its dates.
func (s Status) Holds() bool {
	return s == StatusPending || s == StatusConfirmed
}

type PaymentMethod string

const (
	PaymentUPI   PaymentMethod = "upi"
	PaymentDebit PaymentMethod = "debit"
	PaymentCash  PaymentMethod = "cash"
)

// ParsePaymentMethod accepts either the method id or its stored label.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upi":
		return PaymentUPI, true
	case "debit", "debit card":
		return PaymentDebit, true
	case "cash":
		return PaymentCash, true
	}
	return "", false
}

// Label is the value persisted in bookings.payment_method.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentUPI:
		return "UPI"
	case PaymentDebit:
		return "Debit Card"
	case PaymentCash:
		return "Cash"
	}
	return ""
}

// DeliveryTime is the promised hand-over window for the method.
func (m PaymentMethod) DeliveryTime() string {
	switch m {
	case PaymentUPI:
		return "2-3 hours"
	case PaymentDebit:
		return "4-6 hours"
	case PaymentCash:
		return "Next day"
	}
	return ""
}

// InitialStatus is pending for cash, which is collected on delivery.
func (m PaymentMethod) InitialStatus() Status {
	if m == PaymentCash {
		return StatusPending
	}
	return StatusConfirmed
}

// PaymentDetails are checked for presence only and never stored.
type PaymentDetails struct {
	UPIID      string `json:"upi_id"`
	CardNumber string `json:"card_number"`
	CardExpiry string `json:"card_expiry"`
	CardCVV    string `json:"card_cvv"`
}

func (m PaymentMethod) Validate(d PaymentDetails) error {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }
	switch m {
	case PaymentUPI:
		if blank(d.UPIID) {
			return errors.New("please enter your UPI ID")
		}
	case PaymentDebit:
		if blank(d.CardNumber) || blank(d.CardExpiry) || blank(d.CardCVV) {
			return errors.New("please fill all card details")
		}
	case PaymentCash:
	default:
		return errors.New("unknown payment method")
	}
	return nil
}

const DateLayout = "2006-01-02"

// Date is a calendar day, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// DateOf drops the clock part of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween counts both ends, so the same day twice is one day.
func DaysBetween(start, end Date) int {
	return int(end.Sub(start.Time).Hours()/24) + 1
}

type Booking struct {
	ID            types.ID    `json:"id"`
	UserID        string      `json:"user_id"`
	CarID         types.ID    `json:"car_id"`
	StartDate     Date        `json:"start_date"`
	EndDate       Date        `json:"end_date"`
	Days          int         `json:"days"`
	DistanceKm    float64     `json:"distance_km"`
	IncludeDriver bool        `json:"include_driver"`
	AddOns        []string    `json:"add_ons"`
	TotalAmount   types.Money `json:"total_amount"`
	PaymentMethod string      `json:"payment_method"`
	Status        Status      `json:"status"`
	StatusVersion int         `json:"-"`
	DeliveryTime  string      `json:"delivery_time"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	// Filled by listing queries.
	CarName    string `json:"car_name,omitempty"`
	RenterName string `json:"renter_name,omitempty"`
}

// Event records one status change.
type Event struct {
	ID         int64
	BookingID  types.ID
	FromStatus Status
	ToStatus   Status
	ActorID    string
	CreatedAt  time.Time
}

// Totals are the aggregates the store computes for the admin dashboard.
type Totals struct {
	Bookings       int
	Revenue        int64
	MonthlyRevenue int64
}

type Stats struct {
	TotalBookings  int         `json:"total_bookings"`
	TotalRevenue   types.Money `json:"total_revenue"`
	MonthlyRevenue types.Money `json:"monthly_revenue"`
	TotalCars      int         `json:"total_cars"`
}
