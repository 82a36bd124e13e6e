package ninjavan

// EventType is a NinjaVan tracking status as delivered in webhook
// payloads and tracking events.
type EventType string

const (
	EventCancelled                EventType = "Cancelled"
	EventReturnedToSender         EventType = "Returned to Sender"
	EventSuccessfulDelivery       EventType = "Successful Delivery"
	EventCompleted                EventType = "Completed"
	EventCustomsHeld              EventType = "Customs Held"
	EventCustomsCleared           EventType = "Customs Cleared"
	EventCrossBorderTransit       EventType = "Cross Border Transit"
	EventStaging                  EventType = "Staging"
	EventParcelMeasurementsUpdate EventType = "Parcel Measurements Update"
	EventParcelWeight             EventType = "Parcel Weight"
	EventParcelSize               EventType = "Parcel Size"
	EventVanEnrouteToPickup       EventType = "Van En-route to Pickup"
	EventReturnToSenderTriggered  EventType = "Return to Sender Triggered"
	EventPendingPickupAtDP        EventType = "Pending Pickup at Distribution Point"
	EventArrivedAtDP              EventType = "Arrived at Distribution Point"
	EventOnVehicleForDeliveryRTS  EventType = "On Vehicle for Delivery (RTS)"
	EventFirstAttemptDeliveryFail EventType = "First Attempt Delivery Fail"
	EventPendingReschedule        EventType = "Pending Reschedule"
	EventOnVehicleForDelivery     EventType = "On Vehicle for Delivery"
	EventArrivedAtOriginHub       EventType = "Arrived at Origin Hub"
	EventTransferredTo3PL         EventType = "Transferred to 3PL"
	EventArrivedAtSortingHub      EventType = "Arrived at Sorting Hub"
	EventEnrouteToSortingHub      EventType = "En-route to Sorting Hub"
	EventPickupFail               EventType = "Pickup Fail"
	EventSuccessfulPickup         EventType = "Successful Pickup"
	EventPendingPickup            EventType = "Pending Pickup"
)

var eventTypes = map[EventType]struct{}{
	EventCancelled:                {},
	EventReturnedToSender:         {},
	EventSuccessfulDelivery:       {},
	EventCompleted:                {},
	EventCustomsHeld:              {},
	EventCustomsCleared:           {},
	EventCrossBorderTransit:       {},
	EventStaging:                  {},
	EventParcelMeasurementsUpdate: {},
	EventParcelWeight:             {},
	EventParcelSize:               {},
	EventVanEnrouteToPickup:       {},
	EventReturnToSenderTriggered:  {},
	EventPendingPickupAtDP:        {},
	EventArrivedAtDP:              {},
	EventOnVehicleForDeliveryRTS:  {},
	EventFirstAttemptDeliveryFail: {},
	EventPendingReschedule:        {},
	EventOnVehicleForDelivery:     {},
	EventArrivedAtOriginHub:       {},
	EventTransferredTo3PL:         {},
	EventArrivedAtSortingHub:      {},
	EventEnrouteToSortingHub:      {},
	EventPickupFail:               {},
	EventSuccessfulPickup:         {},
	EventPendingPickup:            {},
}

// IsEventType reports whether s is a known tracking status.
func IsEventType(s string) bool {
	_, ok := eventTypes[EventType(s)]
	return ok
}

// EventTypes returns all known tracking statuses.
func EventTypes() []EventType {
	out := make([]EventType, 0, len(eventTypes))
	for et := range eventTypes {
		out = append(out, et)
	}
	return out
}
