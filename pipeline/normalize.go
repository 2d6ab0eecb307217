package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"proplookup/identity"
	"proplookup/models"
)

var (
	letRentRegex      = regexp.MustCompile(`(?i)let|rent`)
	soldLetRegex      = regexp.MustCompile(`(?i)sold|let`)
	soldArchivedRegex = regexp.MustCompile(`(?i)sold|archived`)
	nonLetterRegex    = regexp.MustCompile(`[^a-z]`)
)

// Alias tables for the fields whose names differ per provider. Order is
// probe priority.
var (
	addressAliases = []string{"house_location", "displayaddress", "DisplayAddress", "OrderedDisplayAddress", "full address", "address"}
	priceAliases   = []string{"house_price", "price", "PriceAsString", "price as string"}
	agentAliases   = []string{"agency_agent_name", "username", "useremail", "agent", "contact name"}
	statusAliases  = []string{"house_extra_info_3", "status", "PropertyStatus", "Selling type"}
	updatedAliases = []string{"updateddate", "addeddate", "ModifiedOnDate", "Listing date"}
)

// Normalize turns one raw feed record into the canonical listing view.
// fallbackID is used when the record carries no identifier of its own
// (callers pass the array index). Never fails: missing or malformed
// fields degrade to empty strings.
func Normalize(raw models.Record, hint models.AgencyHint, fallbackID string) models.NormalizedListing {
	id := Text(firstPresent(raw, "id", "uniquereferencenumber"))
	if id == "" {
		id = fallbackID
	}

	addr := child(raw, "address")
	nestedParts := []string{
		Text(addr["area"]),
		Text(addr["street"]),
		Text(addr["propertyname"]),
		Text(coalesce(addr["town"], raw["city"])),
		Text(coalesce(addr["region"], raw["county"])),
		Text(firstPresent(raw, "eircode", "Eircode", "postcode")),
	}

	var addressParts []string
	if base := Pick(raw, addressAliases...); strings.TrimSpace(base) != "" {
		addressParts = append(addressParts, base)
	}
	for _, part := range nestedParts {
		if strings.TrimSpace(part) != "" {
			addressParts = append(addressParts, part)
		}
	}
	addressText := strings.Join(addressParts, ", ")

	tokenParts := append([]string{addressText}, addressTokenSources(raw, addr)...)
	addressTokens := identity.Tokenize(tokenParts...)
	addressKey := strings.Join(addressTokens, "")
	if addressKey == "" {
		fallback := addressText
		if fallback == "" {
			fallback = Text(raw["house_location"])
		}
		if fallback == "" {
			fallback = Text(raw["displayaddress"])
		}
		if fallback == "" {
			fallback = id
		}
		addressKey = identity.FallbackKey(fallback)
	}

	typeText := Text(raw["house_extra_info_1"])
	if typeText == "" {
		typeText = Text(raw["type"])
	}
	if typeText == "" {
		typeText = Pick(raw, "house type", "PropertyClass")
	}

	priceFreq := Text(raw["pricefrequency"])
	priceValue := Pick(raw, priceAliases...)
	priceText := ""
	if priceValue != "" && priceValue != "0" {
		priceText = strings.TrimSpace(priceValue)
	}

	agentText := Pick(raw, agentAliases...)
	statusText := Pick(raw, statusAliases...)

	saleType := models.SaleTypeForSale
	if strings.Contains(strings.ToLower(priceFreq), "pcm") ||
		(statusText != "" && letRentRegex.MatchString(statusText)) ||
		strings.Contains(strings.ToLower(Text(raw["PropertyStatus"])), "rent") {
		saleType = models.SaleTypeToLet
	}

	liveState := models.StatusAvailable
	if statusText != "" && soldLetRegex.MatchString(statusText) {
		liveState = models.StatusArchived
	}

	propertyType := typeChain(raw)

	sourceCode := detectSource(raw, hint)

	squareText := sanitizeCount(Text(firstPresent(raw, "house_mt_squared", "floorarea", "SizeStringMeters", "SizeString")))
	bathroomsText := sanitizeCount(Text(firstPresent(raw, "house_bathrooms", "bathrooms", "BathString")))
	bedroomsText := sanitizeCount(Text(firstPresent(raw, "house_bedrooms", "bedrooms", "BedsString")))

	updatedText := FormatDate(Pick(raw, updatedAliases...))

	photoURLs := CollectPhotos(raw)
	pictureCount := len(photoURLs)
	if pictureCount == 0 {
		pictureCount = intText(firstPresent(raw, "PhotoCount", "photoCount"))
	}

	info1Text := Text(firstPresent(raw, "house_extra_info_2", "house_extra_info_4"))
	isOffline := info1Text != "" && soldArchivedRegex.MatchString(info1Text)

	displayStatus := liveState
	switch {
	case isOffline:
		displayStatus = models.StatusOffline
	case strings.Contains(strings.ToLower(statusText), "live"):
		displayStatus = models.StatusAvailable
	case statusText != "":
		displayStatus = statusText
	}

	eircode := identity.NormalizeEircode(Text(firstPresent(raw, "eircode", "Eircode", "postcode")))

	return models.NormalizedListing{
		ID:                id,
		AddressText:       addressText,
		AddressTokens:     addressTokens,
		AddressKey:        addressKey,
		EircodeNormalized: eircode,
		PriceText:         priceText,
		TypeText:          typeText,
		AgentText:         agentText,
		StatusText:        statusText,
		BedroomsText:      bedroomsText,
		BathroomsText:     bathroomsText,
		SquareText:        squareText,
		UpdatedText:       updatedText,
		Info1Text:         info1Text,
		SaleType:          saleType,
		DisplayStatus:     displayStatus,
		PropertyType:      propertyType,
		PhotoURLs:         photoURLs,
		PictureCount:      pictureCount,
		SourceCode:        sourceCode,
		SourceLabel:       models.SourceLabels[sourceCode],
		Raw:               raw,
	}
}

// NormalizeAll normalizes a whole fetch result, using each record's array
// index as the identifier of last resort.
func NormalizeAll(items []models.Record, hint models.AgencyHint) []models.NormalizedListing {
	out := make([]models.NormalizedListing, 0, len(items))
	for i, item := range items {
		out = append(out, Normalize(item, hint, strconv.Itoa(i)))
	}
	return out
}

// addressTokenSources lists the raw fields fed into the fingerprint in
// addition to the composed address text.
func addressTokenSources(raw models.Record, addr models.Record) []string {
	return []string{
		Text(raw["house_location"]),
		Text(raw["displayaddress"]),
		Text(raw["DisplayAddress"]),
		Text(raw["OrderedDisplayAddress"]),
		Text(addr["area"]),
		Text(addr["street"]),
		Text(addr["propertyname"]),
		Text(addr["town"]),
		Text(addr["region"]),
		Text(raw["city"]),
		Text(raw["county"]),
	}
}

func typeChain(raw models.Record) string {
	for _, key := range []string{"category", "type", "PropertyClass", "house_extra_info_1"} {
		if v := Text(raw[key]); v != "" {
			return v
		}
	}
	return Pick(raw, "Property type")
}

// detectSource resolves the provider a record came from. Explicit source
// fields win; agency configuration breaks ties for records that omit
// theirs; findahome is the default. The probe order matters: an agency
// can have several integrations configured at once.
func detectSource(raw models.Record, hint models.AgencyHint) string {
	var sourceRaw string
	if s, ok := raw["source"].(string); ok && s != "" {
		sourceRaw = s
	} else if s, ok := raw["sourceLabel"].(string); ok && s != "" {
		sourceRaw = s
	} else if feedTo := child(raw, "feedto"); feedTo != nil {
		sourceRaw = Text(raw["feedto"])
	}

	normalized := nonLetterRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(sourceRaw)), "")
	switch {
	case strings.Contains(normalized, "wordpress") || strings.Contains(normalized, "wp"):
		return models.SourceWordPress
	case strings.Contains(normalized, "myhome"):
		return models.SourceMyHome
	case strings.Contains(normalized, "acquaint") || strings.Contains(normalized, "acqauint") || strings.HasPrefix(normalized, "acq"):
		return models.SourceAcquaint
	case strings.Contains(normalized, "daft"):
		return models.SourceDaft
	case hint.HasMyHomeKey:
		return models.SourceMyHome
	case hint.HasAcquaintPrefix:
		return models.SourceAcquaint
	}
	return models.SourceFindAHome
}

func sanitizeCount(v string) string {
	if v == "" || v == "0" {
		return ""
	}
	return v
}

func coalesce(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func intText(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		count := 0
		for _, c := range n {
			if c < '0' || c > '9' {
				break
			}
			count = count*10 + int(c-'0')
		}
		return count
	}
	return 0
}
