package models

// Sale types inferred from price frequency and status text.
const (
	SaleTypeForSale = "For Sale"
	SaleTypeToLet   = "To Let"
)

// Display statuses. Anything else passes through from the raw status field.
const (
	StatusOffline   = "Offline"
	StatusAvailable = "Available"
	StatusArchived  = "Archived"
)

// NormalizedListing is the canonical view of one raw record. Every text
// field is a plain string, empty when the source value is missing, zero,
// or blank. Recomputed from scratch on every fetch; never mutated after
// normalization.
type NormalizedListing struct {
	ID               string   `json:"id"`
	AddressText      string   `json:"address_text"`
	AddressTokens    []string `json:"address_tokens"`
	AddressKey       string   `json:"address_key"`
	EircodeNormalized string  `json:"eircode_normalized"`
	PriceText        string   `json:"price_text"`
	TypeText         string   `json:"type_text"`
	AgentText        string   `json:"agent_text"`
	StatusText       string   `json:"status_text"`
	BedroomsText     string   `json:"bedrooms_text"`
	BathroomsText    string   `json:"bathrooms_text"`
	SquareText       string   `json:"square_text"`
	UpdatedText      string   `json:"updated_text"`
	Info1Text        string   `json:"info1_text"`
	SaleType         string   `json:"sale_type"`
	DisplayStatus    string   `json:"display_status"`
	PropertyType     string   `json:"property_type"`
	PhotoURLs        []string `json:"photo_urls"`
	PictureCount     int      `json:"picture_count"`
	SourceCode       string   `json:"source_code"`
	SourceLabel      string   `json:"source_label"`
	Raw              Record   `json:"-"`
}

// ListingGroup is one physical property merged across sources. The first
// member fixes the group's key and representative display fields; variants
// keep arrival order.
type ListingGroup struct {
	AddressKey    string              `json:"group_key"`
	SourceList    []string            `json:"sources"`
	Variants      []NormalizedListing `json:"variants"`
	DisplayStatus string              `json:"display_status"`
}

// Count returns the number of merged variants.
func (g *ListingGroup) Count() int {
	return len(g.Variants)
}

// HasSource reports whether any variant came from the given provider code.
func (g *ListingGroup) HasSource(code string) bool {
	for _, s := range g.SourceList {
		if s == code {
			return true
		}
	}
	return false
}

// SourceText renders the group's source list for display, e.g.
// "MyHome, Acquaint".
func (g *ListingGroup) SourceText() string {
	out := ""
	for i, s := range g.SourceList {
		label := SourceLabels[s]
		if label == "" {
			label = SourceLabels[SourceFindAHome]
		}
		if i > 0 {
			out += ", "
		}
		out += label
	}
	return out
}

// AgencyHint carries the configuration flags used as a tie-breaker when a
// record omits its source.
type AgencyHint struct {
	HasMyHomeKey      bool
	HasAcquaintPrefix bool
}
