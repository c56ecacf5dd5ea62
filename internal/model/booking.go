package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking is a customer's request for a service on a date.  It is stored
// as one element of the bookings.json array (or one row of the bookings
// table when the MySQL store is used).  TotalPrice and the add-on prices
// are snapshots taken at submission time and are never recomputed.
//
// Fields:
//  ID             – 6 character short id, unique within the store.
//  Name           – customer name.
//  WhatsAppNumber – customer contact number.
//  Email          – customer email (optional).
//  ServiceTitle   – title of the booked service (not enforced).
//  Date           – requested date as submitted by the client.
//  Addons         – selected add-ons with their price at submission.
//  Options        – option name to chosen value name.
//  TotalPrice     – computed total at submission.
//  Status         – lifecycle state.
//  CreatedAt      – submission time (absent in older files).
type Booking struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	WhatsAppNumber string            `json:"whatsappNumber"`
	Email          string            `json:"email"`
	ServiceTitle   string            `json:"serviceTitle"`
	Date           string            `json:"date"`
	Addons         []BookingAddon    `json:"addons"`
	Options        map[string]string `json:"options"`
	TotalPrice     float64           `json:"totalPrice"`
	Status         BookingStatus     `json:"status"`
	CreatedAt      *time.Time        `json:"createdAt,omitempty"`
}

// BookingAddon is the name and price snapshot of a selected add-on.
type BookingAddon struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
