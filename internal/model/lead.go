package model

// Lead is a contact submitted through the marketing site. Optional fields are nil when the
// visitor left them blank.
type Lead struct {
	ID                    int64   `json:"id"`
	FullName              string  `json:"full_name"`
	Email                 string  `json:"email"`
	Phone                 *string `json:"phone"`
	CompanyName           *string `json:"company_name"`
	IndustrySegment       *string `json:"industry_segment"`
	FleetSize             *string `json:"fleet_size"`
	LocationZip           *string `json:"location_zip"`
	CurrentChargingStatus *string `json:"current_charging_status"`
	PrimaryInterests      *string `json:"primary_interests"`
	Timeline              *string `json:"timeline"`
	Comments              *string `json:"comments"`
	Ctime                 int64   `json:"ctime"`
}
