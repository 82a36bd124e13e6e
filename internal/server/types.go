package server

import (
	"github.com/tournevent/courier/pkg/courier"
)

// Request/response types for the JSON API.

type addressJSON struct {
	Line1       string  `json:"line1"`
	Line2       string  `json:"line2,omitempty"`
	Area        string  `json:"area,omitempty"`
	City        string  `json:"city,omitempty"`
	Province    string  `json:"province,omitempty"`
	PostalCode  string  `json:"postal_code,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	AddressType string  `json:"address_type,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

type contactJSON struct {
	Name    string      `json:"name"`
	Phone   string      `json:"phone,omitempty"`
	Email   string      `json:"email,omitempty"`
	Address addressJSON `json:"address"`
}

type itemJSON struct {
	Description   string `json:"description"`
	Quantity      int    `json:"quantity,omitempty"`
	DangerousGood bool   `json:"dangerous_good,omitempty"`
}

type parcelJSON struct {
	DeliveryStartDate string     `json:"delivery_start_date"`
	TimeslotStart     string     `json:"timeslot_start"`
	TimeslotEnd       string     `json:"timeslot_end"`
	Timezone          string     `json:"timezone,omitempty"`
	Instructions      string     `json:"instructions,omitempty"`
	CashOnDelivery    float64    `json:"cash_on_delivery,omitempty"`
	InsuredValue      float64    `json:"insured_value,omitempty"`
	Size              string     `json:"size,omitempty"`
	Weight            float64    `json:"weight,omitempty"`
	PickupRequired    bool       `json:"pickup_required"`
	Items             []itemJSON `json:"items,omitempty"`
}

type orderJSON struct {
	ServiceType             string      `json:"service_type"`
	ServiceLevel            string      `json:"service_level"`
	RequestedTrackingNumber string      `json:"requested_tracking_number,omitempty"`
	Reference               string      `json:"reference,omitempty"`
	From                    contactJSON `json:"from"`
	To                      contactJSON `json:"to"`
	Parcel                  parcelJSON  `json:"parcel"`
}

type batchRequest struct {
	Orders []orderJSON `json:"orders"`
	Strict bool        `json:"strict"`
}

type expressRequest struct {
	Orders            []orderJSON `json:"orders"`
	ShowSenderDetails bool        `json:"show_sender_details"`
	Limitless         bool        `json:"limitless"`
}

type cancelRequest struct {
	TrackingNumbers []string `json:"tracking_numbers"`
}

func contactFromJSON(c contactJSON) courier.Contact {
	return courier.Contact{
		Name:  c.Name,
		Phone: c.Phone,
		Email: c.Email,
		Address: courier.Address{
			Line1:       c.Address.Line1,
			Line2:       c.Address.Line2,
			Area:        c.Address.Area,
			City:        c.Address.City,
			Province:    c.Address.Province,
			PostalCode:  c.Address.PostalCode,
			CountryCode: c.Address.CountryCode,
			AddressType: c.Address.AddressType,
			Latitude:    c.Address.Latitude,
			Longitude:   c.Address.Longitude,
		},
	}
}

func orderFromJSON(o orderJSON) *courier.OrderRequest {
	items := make([]courier.Item, 0, len(o.Parcel.Items))
	for _, it := range o.Parcel.Items {
		items = append(items, courier.Item{
			Description:   it.Description,
			Quantity:      it.Quantity,
			DangerousGood: it.DangerousGood,
		})
	}

	return &courier.OrderRequest{
		ServiceType:             courier.ServiceType(o.ServiceType),
		ServiceLevel:            courier.ServiceLevel(o.ServiceLevel),
		RequestedTrackingNumber: o.RequestedTrackingNumber,
		Reference:               o.Reference,
		From:                    contactFromJSON(o.From),
		To:                      contactFromJSON(o.To),
		Parcel: courier.ParcelJob{
			DeliveryStartDate: o.Parcel.DeliveryStartDate,
			DeliveryTimeslot: courier.Timeslot{
				StartTime: o.Parcel.TimeslotStart,
				EndTime:   o.Parcel.TimeslotEnd,
				Timezone:  o.Parcel.Timezone,
			},
			Instructions:   o.Parcel.Instructions,
			CashOnDelivery: o.Parcel.CashOnDelivery,
			InsuredValue:   o.Parcel.InsuredValue,
			Dimensions: courier.Dimensions{
				Size:   o.Parcel.Size,
				Weight: o.Parcel.Weight,
			},
			PickupRequired: o.Parcel.PickupRequired,
			Items:          items,
		},
	}
}

func (r batchRequest) orders() []*courier.OrderRequest {
	out := make([]*courier.OrderRequest, 0, len(r.Orders))
	for _, o := range r.Orders {
		out = append(out, orderFromJSON(o))
	}
	return out
}

func (r expressRequest) orders() []*courier.OrderRequest {
	out := make([]*courier.OrderRequest, 0, len(r.Orders))
	for _, o := range r.Orders {
		out = append(out, orderFromJSON(o))
	}
	return out
}

type statsJSON struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

type orderResultJSON struct {
	TrackingNumber          string `json:"tracking_number"`
	RequestedTrackingNumber string `json:"requested_tracking_number,omitempty"`
	ServiceType             string `json:"service_type,omitempty"`
	ServiceLevel            string `json:"service_level,omitempty"`
	Reference               string `json:"reference,omitempty"`
}

type cancelResultJSON struct {
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

type outcomeJSON struct {
	OK          bool               `json:"ok"`
	Stats       statsJSON          `json:"stats"`
	Data        []orderResultJSON  `json:"data,omitempty"`
	Errors      []string           `json:"errors,omitempty"`
	Cancelation *cancelOutcomeJSON `json:"cancelation,omitempty"`
}

type cancelOutcomeJSON struct {
	OK     bool               `json:"ok"`
	Stats  statsJSON          `json:"stats"`
	Data   []cancelResultJSON `json:"data,omitempty"`
	Errors []string           `json:"errors,omitempty"`
}

type waybillJSON struct {
	TrackingNumber string `json:"tracking_number"`
	ContentType    string `json:"content_type"`
	Data           []byte `json:"data"`
}

type expressResponse struct {
	outcomeJSON
	Waybills []waybillJSON `json:"waybills"`
}

func outcomeResponse(o *courier.Outcome[*courier.OrderResult]) outcomeJSON {
	resp := outcomeJSON{
		OK:     o.OK,
		Stats:  statsJSON(o.Stats),
		Errors: o.Errors,
	}
	for _, res := range o.Data {
		resp.Data = append(resp.Data, orderResultJSON{
			TrackingNumber:          res.TrackingNumber,
			RequestedTrackingNumber: res.RequestedTrackingNumber,
			ServiceType:             string(res.ServiceType),
			ServiceLevel:            string(res.ServiceLevel),
			Reference:               res.Reference,
		})
	}
	if o.Cancelation != nil {
		c := cancelOutcomeResponse(o.Cancelation)
		resp.Cancelation = &c
	}
	return resp
}

type trackingEventJSON struct {
	TrackingNumber string `json:"tracking_number,omitempty"`
	ShipperID      string `json:"shipper_id,omitempty"`
	ShipperRef     string `json:"shipper_ref,omitempty"`
	Status         string `json:"status,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
	HubCountry     string `json:"hub_country,omitempty"`
	HubCity        string `json:"hub_city,omitempty"`
	Hub            string `json:"hub,omitempty"`
	OnReturnLeg    bool   `json:"on_return_leg,omitempty"`
}

type trackingInfoJSON struct {
	TrackingNumber       string              `json:"tracking_number"`
	FullHistoryAvailable bool                `json:"full_history_available"`
	Events               []trackingEventJSON `json:"events"`
}

func trackingResponse(infos []*courier.TrackingInfo) map[string][]trackingInfoJSON {
	data := make([]trackingInfoJSON, 0, len(infos))
	for _, info := range infos {
		out := trackingInfoJSON{
			TrackingNumber:       info.TrackingNumber,
			FullHistoryAvailable: info.FullHistoryAvailable,
			Events:               make([]trackingEventJSON, 0, len(info.Events)),
		}
		for _, ev := range info.Events {
			out.Events = append(out.Events, trackingEventJSON(ev))
		}
		data = append(data, out)
	}
	return map[string][]trackingInfoJSON{"data": data}
}

func cancelOutcomeResponse(o *courier.Outcome[*courier.CancelResult]) cancelOutcomeJSON {
	resp := cancelOutcomeJSON{
		OK:     o.OK,
		Stats:  statsJSON(o.Stats),
		Errors: o.Errors,
	}
	for _, res := range o.Data {
		resp.Data = append(resp.Data, cancelResultJSON{
			TrackingNumber: res.TrackingNumber,
			Status:         res.Status,
			UpdatedAt:      res.UpdatedAt,
		})
	}
	return resp
}
