package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"proplookup/models"
)

// Default provider endpoints. Overridable for tests and for agencies
// hosted on staging feeds.
const (
	DefaultMyHomeBase   = "https://agentapi.myhome.ie"
	DefaultAcquaintBase = "https://www.acquaintcrm.co.uk"
	DefaultDaftBase     = "https://daftapi.4pm.ie"
)

// SourceError is one provider failure during an agency fetch. A refresh
// keeps going when a single feed is down; callers get the partial result
// plus the per-source errors.
type SourceError struct {
	Source string `json:"source"`
	Err    string `json:"error"`
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Err)
}

// Client fetches raw listing records from the provider feeds.
type Client struct {
	http         *http.Client
	MyHomeBase   string
	AcquaintBase string
	DaftBase     string
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		http:         httpClient,
		MyHomeBase:   DefaultMyHomeBase,
		AcquaintBase: DefaultAcquaintBase,
		DaftBase:     DefaultDaftBase,
	}
}

// FetchAgency pulls every feed the agency is configured for and returns
// the combined raw records tagged with their source. sources filters to a
// subset of provider codes when non-empty. Provider failures are
// accumulated, not fatal.
func (c *Client) FetchAgency(ctx context.Context, ag *models.Agency, sources map[string]bool) ([]models.Record, []SourceError) {
	var records []models.Record
	var errs []SourceError

	wanted := func(code string) bool {
		return len(sources) == 0 || sources[code]
	}

	if ag.MyHomeAPIKey != "" && wanted(models.SourceMyHome) {
		rows, err := c.FetchMyHome(ctx, ag.MyHomeAPIKey)
		if err != nil {
			errs = append(errs, SourceError{Source: models.SourceMyHome, Err: err.Error()})
		} else {
			records = append(records, tagAll(rows, models.SourceMyHome)...)
		}
	}

	if prefix := strings.TrimSpace(ag.AcquaintPrefix()); prefix != "" && wanted(models.SourceAcquaint) {
		rows, err := c.FetchAcquaint(ctx, prefix)
		if err != nil {
			errs = append(errs, SourceError{Source: models.SourceAcquaint, Err: err.Error()})
		} else {
			records = append(records, tagAll(rows, models.SourceAcquaint)...)
		}
	}

	if key := strings.TrimSpace(coalesce(ag.DaftAPIKey, ag.UniqueKey)); key != "" && wanted(models.SourceDaft) {
		rows, err := c.FetchDaft(ctx, key)
		if err != nil {
			errs = append(errs, SourceError{Source: models.SourceDaft, Err: err.Error()})
		} else {
			records = append(records, tagAll(rows, models.SourceDaft)...)
		}
	}

	if ag.WordPressURL != "" && wanted(models.SourceWordPress) {
		rows, err := c.FetchWordPress(ctx, ag.WordPressURL)
		if err != nil {
			errs = append(errs, SourceError{Source: models.SourceWordPress, Err: err.Error()})
		} else {
			records = append(records, tagAll(rows, models.SourceWordPress)...)
		}
	}

	return records, errs
}

// FetchMyHome queries the MyHome agent search API. The response wraps the
// rows under one of several keys depending on API version.
func (c *Client) FetchMyHome(ctx context.Context, apiKey string) ([]models.Record, error) {
	endpoint := fmt.Sprintf("%s/search/%s?format=json&correlationId=%s&PageSize=50&PropertyClassIds=1",
		c.MyHomeBase, url.PathEscape(apiKey), url.QueryEscape(apiKey))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return decodeRows(body, "SearchResults", "results", "Properties", "items", "properties")
}

// FetchAcquaint downloads the standard XML datafeed for a site prefix and
// converts the property elements to records.
func (c *Client) FetchAcquaint(ctx context.Context, prefix string) ([]models.Record, error) {
	endpoint := fmt.Sprintf("%s/datafeeds/standardxml/%s-0.xml", c.AcquaintBase, url.PathEscape(prefix))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return ParseAcquaintXML(body)
}

// FetchDaft queries the 4PM property API. List responses are returned
// directly; object responses have their list values flattened together.
func (c *Client) FetchDaft(ctx context.Context, key string) ([]models.Record, error) {
	endpoint := fmt.Sprintf("%s/property?key=%s", c.DaftBase, url.QueryEscape(key))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode daft response: %w", err)
	}
	switch v := raw.(type) {
	case []any:
		return toRecords(v), nil
	case map[string]any:
		var combined []models.Record
		for _, key := range sortedKeys(v) {
			if list, ok := v[key].([]any); ok {
				combined = append(combined, toRecords(list)...)
			}
		}
		return combined, nil
	}
	return nil, nil
}

// FetchWordPress pulls a WordPress property custom-post-type endpoint.
// Rendered titles are flattened to plain address text and the picture
// fields are collected so the normalizer sees a uniform shape.
func (c *Client) FetchWordPress(ctx context.Context, endpoint string) ([]models.Record, error) {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows(body, "items", "results", "properties", "value")
	if err != nil {
		return nil, err
	}

	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeWordPressRow(row))
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/xml;q=0.9, */*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed error %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return io.ReadAll(resp.Body)
}

// decodeRows unwraps a JSON response that is either a bare array or an
// object carrying the rows under one of the given keys.
func decodeRows(body []byte, wrapperKeys ...string) ([]models.Record, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}
	switch v := raw.(type) {
	case []any:
		return toRecords(v), nil
	case map[string]any:
		for _, key := range wrapperKeys {
			if list, ok := v[key].([]any); ok {
				return toRecords(list), nil
			}
		}
		return nil, nil
	}
	return nil, nil
}

func toRecords(list []any) []models.Record {
	out := make([]models.Record, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, models.Record(m))
		}
	}
	return out
}

func tagAll(rows []models.Record, source string) []models.Record {
	for _, r := range rows {
		r.TagSource(source)
	}
	return rows
}

func coalesce(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
