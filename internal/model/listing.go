package model

import "time"

// ListingStatus represents the lifecycle state of a listing
type ListingStatus string

const (
	ListingStatusOpen      ListingStatus = "OPEN"
	ListingStatusAssigned  ListingStatus = "ASSIGNED"
	ListingStatusCompleted ListingStatus = "COMPLETED"
	ListingStatusCancelled ListingStatus = "CANCELLED"
)

// ServiceType enumerates the solar task categories a listing can be posted for
type ServiceType string

const (
	ServicePanelInstall      ServiceType = "panel_install"
	ServicePanelRemoval      ServiceType = "panel_removal"
	ServicePanelCleaning     ServiceType = "panel_cleaning"
	ServiceRoofRepair        ServiceType = "roof_repair"
	ServiceElectricalUpgrade ServiceType = "electrical_upgrade"
	ServiceInverterInstall   ServiceType = "inverter_install"
	ServiceInverterRepair    ServiceType = "inverter_repair"
	ServiceBatteryInstall    ServiceType = "battery_install"
	ServiceEVChargerInstall  ServiceType = "ev_charger_install"
	ServiceSystemInspection  ServiceType = "system_inspection"
	ServiceSystemMaintenance ServiceType = "system_maintenance"
	ServiceMonitoringSetup   ServiceType = "monitoring_setup"
	ServicePermitSurvey      ServiceType = "permit_survey"
	ServiceSiteAssessment    ServiceType = "site_assessment"
	ServiceTreeTrimming      ServiceType = "tree_trimming"
)

// ValidServiceType reports whether t is a known task category.
func ValidServiceType(t ServiceType) bool {
	switch t {
	case ServicePanelInstall, ServicePanelRemoval, ServicePanelCleaning,
		ServiceRoofRepair, ServiceElectricalUpgrade, ServiceInverterInstall,
		ServiceInverterRepair, ServiceBatteryInstall, ServiceEVChargerInstall,
		ServiceSystemInspection, ServiceSystemMaintenance, ServiceMonitoringSetup,
		ServicePermitSurvey, ServiceSiteAssessment, ServiceTreeTrimming:
		return true
	}
	return false
}

// Budget is the poster's acceptable price range. Min == Max is a fixed-price
// listing; both zero means no budget was set.
type Budget struct {
	Min float64 `json:"min" bson:"min" firestore:"min"`
	Max float64 `json:"max" bson:"max" firestore:"max"`
}

// Location is where the work is performed.
type Location struct {
	Lat        float64 `json:"lat" bson:"lat" firestore:"lat"`
	Lng        float64 `json:"lng" bson:"lng" firestore:"lng"`
	PostalCode string  `json:"postal_code,omitempty" bson:"postal_code,omitempty" firestore:"postal_code,omitempty"`
	State      string  `json:"state,omitempty" bson:"state,omitempty" firestore:"state,omitempty"`
}

// WinningBid is the snapshot recorded on the listing when a bid is accepted.
type WinningBid struct {
	BidID        string  `json:"bid_id" bson:"bid_id" firestore:"bid_id"`
	WorkerID     string  `json:"worker_id" bson:"worker_id" firestore:"worker_id"`
	Price        float64 `json:"price" bson:"price" firestore:"price"`
	Score        float64 `json:"score" bson:"score" firestore:"score"`
	PlatformFee  string  `json:"platform_fee" bson:"platform_fee" firestore:"platform_fee"`
	WorkerPayout string  `json:"worker_payout" bson:"worker_payout" firestore:"worker_payout"`
}

// Listing is a postable unit of work awaiting bids.
type Listing struct {
	ID          string      `json:"listing_id" bson:"id" firestore:"id"`
	PostedBy    string      `json:"posted_by" bson:"posted_by" firestore:"posted_by"`
	ServiceType ServiceType `json:"service_type" bson:"service_type" firestore:"service_type"`
	Description string      `json:"description,omitempty" bson:"description,omitempty" firestore:"description,omitempty"`
	Budget      Budget      `json:"budget" bson:"budget" firestore:"budget"`
	Location    Location    `json:"location" bson:"location" firestore:"location"`

	Status              ListingStatus `json:"status" bson:"status" firestore:"status"`
	BidsReceived        int           `json:"bids_received" bson:"bids_received" firestore:"bids_received"`
	BidWindowClosesAt   time.Time     `json:"bid_window_closes_at" bson:"bid_window_closes_at" firestore:"bid_window_closes_at"`
	BidWindowExtensions int           `json:"bid_window_extensions" bson:"bid_window_extensions" firestore:"bid_window_extensions"`
	WinningBid          *WinningBid   `json:"winning_bid,omitempty" bson:"winning_bid,omitempty" firestore:"winning_bid,omitempty"`

	SLAWarningSent   bool       `json:"sla_warning_sent" bson:"sla_warning_sent" firestore:"sla_warning_sent"`
	SLAWarningSentAt *time.Time `json:"sla_warning_sent_at,omitempty" bson:"sla_warning_sent_at,omitempty" firestore:"sla_warning_sent_at,omitempty"`
	ScheduledFor     *time.Time `json:"scheduled_for,omitempty" bson:"scheduled_for,omitempty" firestore:"scheduled_for,omitempty"`

	AssignedAt  *time.Time `json:"assigned_at,omitempty" bson:"assigned_at,omitempty" firestore:"assigned_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty" firestore:"completed_at,omitempty"`
	CompletedBy string     `json:"completed_by,omitempty" bson:"completed_by,omitempty" firestore:"completed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at" firestore:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at" firestore:"updated_at"`
}

// HasBudget reports whether the poster set a price range.
func (l *Listing) HasBudget() bool {
	return l.Budget.Min > 0 || l.Budget.Max > 0
}
