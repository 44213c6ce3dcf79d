package marketplace

import (
	"time"
)

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	ProfilePictureURL  string    `json:"profile_picture_url,omitempty"`
	LinkedInProfileURL string    `json:"linkedin_profile_url,omitempty"`
	IsVerified         bool      `json:"is_verified"`
	VerificationStatus string    `json:"verification_status"`
	CreatedAt          time.Time `json:"created_at"`
}

type RFQStatus string

const (
	RFQStatusActive    RFQStatus = "active"
	RFQStatusClosed    RFQStatus = "closed"
	RFQStatusExpired   RFQStatus = "expired"
	RFQStatusCancelled RFQStatus = "cancelled"
)

type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityPrivate     Visibility = "private"
	VisibilityInvitedOnly Visibility = "invited_only"
)

// RFQ is a buyer's request for quotation.
type RFQ struct {
	ID                     string     `json:"id"`
	BuyerID                string     `json:"buyer_id"`
	BuyerCompanyID         string     `json:"buyer_company_id"`
	BuyerCompanyName       string     `json:"buyer_company_name,omitempty"`
	Title                  string     `json:"title"`
	MaterialCategory       string     `json:"material_category,omitempty"`
	Quantity               string     `json:"quantity,omitempty"`
	TargetPrice            string     `json:"target_price,omitempty"`
	Specifications         string     `json:"specifications,omitempty"`
	DeliveryDeadline       *time.Time `json:"delivery_deadline,omitempty"`
	DeliveryLocation       string     `json:"delivery_location,omitempty"`
	RequiredCertifications string     `json:"required_certifications,omitempty"`
	Status                 RFQStatus  `json:"status"`
	Visibility             Visibility `json:"visibility"`
	ExpiresAt              *time.Time `json:"expires_at,omitempty"`
	ViewCount              int        `json:"view_count"`
	ResponseCount          int        `json:"response_count"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

type ResponseStatus string

const (
	ResponseStatusSubmitted   ResponseStatus = "submitted"
	ResponseStatusUnderReview ResponseStatus = "under_review"
	ResponseStatusAccepted    ResponseStatus = "accepted"
	ResponseStatusRejected    ResponseStatus = "rejected"
)

// RFQResponse is a supplier's quote against an RFQ.
type RFQResponse struct {
	ID                     string         `json:"id"`
	RFQID                  string         `json:"rfq_id"`
	SupplierCompanyID      string         `json:"supplier_company_id"`
	SupplierCompanyName    string         `json:"supplier_company_name,omitempty"`
	RespondingPOCID        string         `json:"responding_poc_id"`
	RespondingPOCName      string         `json:"responding_poc_name,omitempty"`
	Status                 ResponseStatus `json:"status"`
	PriceQuote             string         `json:"price_quote,omitempty"`
	LeadTimeDays           *int           `json:"lead_time_days,omitempty"`
	MinimumOrderQuantity   string         `json:"minimum_order_quantity,omitempty"`
	Message                string         `json:"message,omitempty"`
	CertificationsProvided string         `json:"certifications_provided,omitempty"`
	IsCompetitive          *bool          `json:"is_competitive,omitempty"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

// RFQForm is the payload for creating an RFQ.
type RFQForm struct {
	Title                  string     `json:"title"`
	MaterialCategory       string     `json:"material_category,omitempty"`
	Quantity               string     `json:"quantity,omitempty"`
	TargetPrice            string     `json:"target_price,omitempty"`
	Specifications         string     `json:"specifications,omitempty"`
	DeliveryDeadline       *time.Time `json:"delivery_deadline,omitempty"`
	DeliveryLocation       string     `json:"delivery_location,omitempty"`
	RequiredCertifications []string   `json:"required_certifications,omitempty"`
	PreferredSuppliers     []string   `json:"preferred_suppliers,omitempty"`
	Visibility             Visibility `json:"visibility"`
	ExpiresAt              *time.Time `json:"expires_at,omitempty"`
}

// RFQUpdate is a partial edit of an RFQ. Nil fields are left unchanged.
type RFQUpdate struct {
	Title                  *string     `json:"title,omitempty"`
	MaterialCategory       *string     `json:"material_category,omitempty"`
	Quantity               *string     `json:"quantity,omitempty"`
	TargetPrice            *string     `json:"target_price,omitempty"`
	Specifications         *string     `json:"specifications,omitempty"`
	DeliveryDeadline       *time.Time  `json:"delivery_deadline,omitempty"`
	DeliveryLocation       *string     `json:"delivery_location,omitempty"`
	RequiredCertifications []string    `json:"required_certifications,omitempty"`
	PreferredSuppliers     []string    `json:"preferred_suppliers,omitempty"`
	Visibility             *Visibility `json:"visibility,omitempty"`
	Status                 *RFQStatus  `json:"status,omitempty"`
	ExpiresAt              *time.Time  `json:"expires_at,omitempty"`
}

// RFQResponseForm is the payload for quoting on an RFQ.
type RFQResponseForm struct {
	PriceQuote             string   `json:"price_quote,omitempty"`
	LeadTimeDays           *int     `json:"lead_time_days,omitempty"`
	MinimumOrderQuantity   string   `json:"minimum_order_quantity,omitempty"`
	Message                string   `json:"message,omitempty"`
	CertificationsProvided []string `json:"certifications_provided,omitempty"`
}

// RFQFilters narrows ListRFQs. Zero values are omitted; the API defaults Status
// to active.
type RFQFilters struct {
	Status           RFQStatus
	MaterialCategory string
	Search           string
	Skip             int
	Limit            int
}
