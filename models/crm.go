// models/crm.go
package models

import "time"

// CRM pipeline stages
const (
	StageNew         = "New Lead"
	StageCollecting  = "Collecting Required Documents"
	StageSentUW      = "Sent to Underwriting"
	StageReceivedUW  = "Received From Underwriting"
	StageNegotiation = "Customer Negotiation"
	StageWon         = "Won"
	StageLost        = "Lost"
)

// CRM distribution channels
const (
	ChannelAgency    = "Agency"
	ChannelBroker    = "Broker"
	ChannelBrokerage = "Brokerage"
	ChannelDirect    = "Direct"
	ChannelBanca     = "Banca"
)

// CRM products
const (
	ProductLife       = "Life"
	ProductMedilife   = "Medilife"
	ProductPension    = "Pension"
	ProductCreditLife = "Credit Life"
)

// CRMLead is one pipeline opportunity.
type CRMLead struct {
	ID              string   `json:"id" bson:"_id"`
	Title           string   `json:"title" bson:"title"`
	ExpectedPremium float64  `json:"expectedPremium" bson:"expectedPremium"`
	CompanyName     string   `json:"companyName" bson:"companyName"`
	Email           string   `json:"email,omitempty" bson:"email,omitempty"`
	Address         string   `json:"address,omitempty" bson:"address,omitempty"`
	Phone           string   `json:"phone,omitempty" bson:"phone,omitempty"`
	ContactPerson   string   `json:"contactPerson,omitempty" bson:"contactPerson,omitempty"`
	JobPosition     string   `json:"jobPosition,omitempty" bson:"jobPosition,omitempty"`
	SalespersonID   string   `json:"salespersonId" bson:"salespersonId"`
	SalespersonName string   `json:"salespersonName" bson:"salespersonName"`
	Tags            []string `json:"tags,omitempty" bson:"tags,omitempty"`
	EffectiveDate   string   `json:"effectiveDate,omitempty" bson:"effectiveDate,omitempty"`
	QRFURL          string   `json:"qrfUrl,omitempty" bson:"qrfUrl,omitempty"`
	Stage           string   `json:"stage" bson:"stage"`

	Channel string `json:"channel" bson:"channel"`
	// Brokerage channel details
	BrokerageName          string `json:"brokerageName,omitempty" bson:"brokerageName,omitempty"`
	BrokerageContactPerson string `json:"brokerageContactPerson,omitempty" bson:"brokerageContactPerson,omitempty"`
	BrokerageNumber        string `json:"brokerageNumber,omitempty" bson:"brokerageNumber,omitempty"`
	BrokerageEmail         string `json:"brokerageEmail,omitempty" bson:"brokerageEmail,omitempty"`
	// Broker channel details
	BrokerName          string `json:"brokerName,omitempty" bson:"brokerName,omitempty"`
	BrokerContactPerson string `json:"brokerContactPerson,omitempty" bson:"brokerContactPerson,omitempty"`
	BrokerNumber        string `json:"brokerNumber,omitempty" bson:"brokerNumber,omitempty"`
	BrokerEmail         string `json:"brokerEmail,omitempty" bson:"brokerEmail,omitempty"`
	BrokerFraCode       string `json:"brokerFraCode,omitempty" bson:"brokerFraCode,omitempty"`

	Product string `json:"product" bson:"product"`
	// Quotes per product flavor
	InitialLifeQuote    *float64 `json:"initialLifeQuote,omitempty" bson:"initialLifeQuote,omitempty"`
	FinalLifeQuote      *float64 `json:"finalLifeQuote,omitempty" bson:"finalLifeQuote,omitempty"`
	InitialMedicalQuote *float64 `json:"initialMedicalQuote,omitempty" bson:"initialMedicalQuote,omitempty"`
	InitialTotalQuote   *float64 `json:"initialTotalQuote,omitempty" bson:"initialTotalQuote,omitempty"`
	FinalMedicalQuote   *float64 `json:"finalMedicalQuote,omitempty" bson:"finalMedicalQuote,omitempty"`
	FinalTotalQuote     *float64 `json:"finalTotalQuote,omitempty" bson:"finalTotalQuote,omitempty"`

	CurrentInsurance string `json:"currentInsurance,omitempty" bson:"currentInsurance,omitempty"`
	Competitor       string `json:"competitor,omitempty" bson:"competitor,omitempty"`
	CompetitorOffer  string `json:"competitorOffer,omitempty" bson:"competitorOffer,omitempty"`

	LostReason string `json:"lostReason,omitempty" bson:"lostReason,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`

	Attachments []Attachment `json:"attachments,omitempty" bson:"attachments,omitempty"`
}

// CRMCompany is an entry in the shared company database used for duplicate
// detection when creating leads.
type CRMCompany struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Industry  string    `json:"industry,omitempty" bson:"industry,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type AddCompanyRequest struct {
	Name     string `json:"name" validate:"required"`
	Industry string `json:"industry,omitempty"`
}
