package courier

import (
	"strings"
	"time"
)

// ServiceType indicates the kind of shipment job.
type ServiceType string

const (
	ServiceParcel        ServiceType = "Parcel"
	ServiceMarketplace   ServiceType = "Marketplace"
	ServiceCorporate     ServiceType = "Corporate"
	ServiceInternational ServiceType = "International"
	ServiceBulky         ServiceType = "Bulky"
	ServiceDocument      ServiceType = "Document"
	ServiceReturn        ServiceType = "Return"
)

// ServiceLevel indicates the shipment service level.
type ServiceLevel string

const (
	LevelStandard ServiceLevel = "Standard"
	LevelExpress  ServiceLevel = "Express"
	LevelSameday  ServiceLevel = "Sameday"
	LevelNextday  ServiceLevel = "Nextday"
)

// Address represents a delivery or pickup address.
type Address struct {
	Line1       string
	Line2       string
	Area        string
	City        string
	Province    string
	PostalCode  string
	CountryCode string // ISO 3166-1 alpha-2, e.g., "SG", "MY"
	AddressType string // "home" or "office"
	Latitude    float64
	Longitude   float64
}

// Contact represents the sender or recipient of a parcel.
// Either Phone or Email must be set.
type Contact struct {
	Name    string
	Phone   string
	Email   string
	Address Address
}

// Timeslot is a delivery window within a day, HH:MM 24-hour clock.
type Timeslot struct {
	StartTime string
	EndTime   string
	Timezone  string
}

// Dimensions describes parcel measurements.
type Dimensions struct {
	Size   string // "S", "M", "L", "XL", "XXL"
	Length float64
	Width  float64
	Height float64
	Weight float64 // kg
}

// Item is one declared item inside a parcel.
type Item struct {
	Description   string
	Quantity      int
	DangerousGood bool
}

// ParcelJob holds the pickup/delivery details of an order.
type ParcelJob struct {
	DeliveryStartDate string // yyyy-MM-dd
	DeliveryTimeslot  Timeslot
	Instructions      string
	CashOnDelivery    float64
	InsuredValue      float64
	Dimensions        Dimensions
	PickupRequired    bool
	Items             []Item
}

// OrderRequest is one shipment to be created with the carrier.
// Immutable once submitted to a batch.
type OrderRequest struct {
	ServiceType  ServiceType
	ServiceLevel ServiceLevel

	// RequestedTrackingNumber is the caller-chosen identifier. The
	// carrier concatenates the account prefix with it to form the
	// final tracking number; the express pipeline verifies it did.
	RequestedTrackingNumber string

	// Reference is the order identifier in the shipper's own system.
	Reference string

	From   Contact
	To     Contact
	Parcel ParcelJob
}

// OrderResult is the carrier's record of a successfully created order.
// Produced exactly once per creation, never mutated afterward.
type OrderResult struct {
	TrackingNumber          string
	RequestedTrackingNumber string
	ServiceType             ServiceType
	ServiceLevel            ServiceLevel
	Reference               string
	From                    *Contact
	To                      *Contact
	Parcel                  *ParcelJob
}

// CancelResult is the carrier's record of a cancellation.
type CancelResult struct {
	TrackingNumber string
	Status         string
	UpdatedAt      string
}

// WaybillRequest asks the carrier for a rendered waybill document.
type WaybillRequest struct {
	TrackingNumber     string
	ShowShipperDetails bool
}

// TrackingInfo holds the tracking events of one order.
type TrackingInfo struct {
	TrackingNumber       string
	FullHistoryAvailable bool
	Events               []TrackingEvent
}

// TrackingEvent is a single scan/status event.
type TrackingEvent struct {
	TrackingNumber string
	ShipperID      string
	ShipperRef     string
	Status         string
	Timestamp      string
	HubCountry     string
	HubCity        string
	Hub            string
	OnReturnLeg    bool
}

// Token is an opaque bearer credential. Read-shared across concurrent
// batch branches; replaced on refresh, never mutated.
type Token struct {
	AccessToken string
	TokenType   string // "Bearer"
	ExpiresAt   time.Time
}

// AuthHeader returns the Authorization header value.
func (t *Token) AuthHeader() string {
	typ := t.TokenType
	if typ != "" {
		typ = strings.ToUpper(typ[:1]) + strings.ToLower(typ[1:])
	}
	return typ + " " + t.AccessToken
}

// Valid reports whether the token is usable at the given instant.
func (t *Token) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// Stats summarizes a batch partition.
type Stats struct {
	Total   int
	Success int
	Failed  int
}

// Outcome is the result of a batch operation. Partial failure is data,
// not an error: OK is true iff Stats.Failed == 0, Data holds the
// fulfilled subset and Errors the failure messages of the rejected one.
// Cancelation is set only when a strict-mode creation rolled back.
type Outcome[T any] struct {
	OK          bool
	Stats       Stats
	Data        []T
	Errors      []string
	Cancelation *Outcome[*CancelResult]
}
