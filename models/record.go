package models

// Record is one raw listing as decoded from a provider feed. Shapes vary
// wildly between providers (JSON APIs, XML datafeeds converted to maps,
// WordPress REST payloads), so no fixed schema is assumed; values may be
// strings, numbers, nested maps, or arrays.
type Record map[string]any

// Source tags a record with the feed it came from. Set by the fetch layer
// when the provider is known; the normalizer falls back to sniffing
// source-like fields and agency configuration otherwise.
func (r Record) TagSource(source string) {
	if _, ok := r["source"]; !ok {
		r["source"] = source
	}
}

// Known provider codes. FindAHome is the catch-all for records whose
// origin cannot be determined.
const (
	SourceMyHome    = "myhome"
	SourceAcquaint  = "acquaint"
	SourceDaft      = "daft"
	SourceWordPress = "wordpress"
	SourceFindAHome = "findahome"
)

// SourceLabels maps provider codes to their display names.
var SourceLabels = map[string]string{
	SourceMyHome:    "MyHome",
	SourceAcquaint:  "Acquaint",
	SourceDaft:      "Daft",
	SourceWordPress: "WordPress",
	SourceFindAHome: "FindAHome",
}
