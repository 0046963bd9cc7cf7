package catalog

// AppointmentType is a category of bookable service. Reference data,
// created and edited by staff tooling.
type AppointmentType struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DefaultDuration int    `json:"default_duration_minutes"`
}

// Tariff is a purchasable package tied to a type. Sessions is the number of
// separate slot reservations a single purchase entitles the buyer to.
type Tariff struct {
	ID                int64  `json:"id"`
	AppointmentTypeID int64  `json:"appointment_type_id"`
	Name              string `json:"name"`
	Sessions          int    `json:"sessions"`
	DurationMins      int    `json:"duration_minutes"`
	PriceCents        int64  `json:"price_cents"`
}

// StaffMember is a user qualified to perform at least one appointment type.
type StaffMember struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}
