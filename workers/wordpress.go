package workers

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"proplookup/models"
	"proplookup/storage"
)

// WordPressProbeWorker finds REST feed endpoints for agencies that run
// their own WordPress property sites. Two strategies: match the agency
// against a curated endpoint list by domain, and fall back to fetching
// the agency homepage and reading the wp-json API link WordPress embeds
// in its markup.
type WordPressProbeWorker struct {
	store         *storage.PostgresStore
	httpClient    *http.Client
	endpointsFile string
	triggerCh     chan struct{}
	logFunc       LogFunc
}

func NewWordPressProbeWorker(store *storage.PostgresStore, client *http.Client, endpointsFile string) *WordPressProbeWorker {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &WordPressProbeWorker{
		store:         store,
		httpClient:    client,
		endpointsFile: endpointsFile,
		triggerCh:     make(chan struct{}, 1),
		logFunc:       NoOpLogger,
	}
}

func (w *WordPressProbeWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately.
func (w *WordPressProbeWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the probe loop.
func (w *WordPressProbeWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("WordPress probe worker stopping")
			return
		case <-ticker.C:
			w.probeAll(ctx)
		case <-w.triggerCh:
			log.Println("WordPress probe worker triggered manually")
			w.probeAll(ctx)
		}
	}
}

func (w *WordPressProbeWorker) probeAll(ctx context.Context) {
	agencies, err := w.store.ListAgencies(ctx)
	if err != nil {
		log.Printf("WP probe: list agencies: %v", err)
		return
	}

	known := loadEndpointList(w.endpointsFile)

	for i := range agencies {
		if ctx.Err() != nil {
			return
		}
		ag := &agencies[i]
		if ag.WordPressURL != "" {
			continue
		}

		endpoint := matchKnownEndpoint(ag, known)
		if endpoint == "" {
			endpoint = w.discover(ctx, ag.Site)
		}
		if endpoint == "" {
			continue
		}

		ag.WordPressURL = endpoint
		if err := w.store.UpsertAgency(ctx, ag); err != nil {
			log.Printf("WP probe %s: save failed: %v", ag.Name, err)
			continue
		}
		msg := fmt.Sprintf("WordPress feed found: %s", endpoint)
		log.Printf("WP probe %s: %s", ag.Name, msg)
		w.logFunc(models.LogInfo, ag.UniqueKey, msg)
	}
}

// discover fetches the agency homepage and follows the api.w.org link
// WordPress adds to every page, building a property post-type endpoint
// from it.
func (w *WordPressProbeWorker) discover(ctx context.Context, site string) string {
	if site == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, "GET", site, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	apiRoot, _ := doc.Find(`link[rel="https://api.w.org/"]`).Attr("href")
	if apiRoot == "" {
		// Older themes only expose the REST root in the RSD link
		if rsd, ok := doc.Find(`link[rel="EditURI"]`).Attr("href"); ok {
			apiRoot = strings.Replace(rsd, "xmlrpc.php?rsd", "wp-json/", 1)
		}
	}
	if apiRoot == "" {
		return ""
	}

	endpoint := strings.TrimSuffix(apiRoot, "/") + "/wp/v2/property?per_page=100"
	if !w.endpointServesRows(ctx, endpoint) {
		return ""
	}
	return endpoint
}

// endpointServesRows confirms the candidate answers with JSON rather
// than a 404 page.
func (w *WordPressProbeWorker) endpointServesRows(ctx context.Context, endpoint string) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK &&
		strings.Contains(resp.Header.Get("Content-Type"), "json")
}

func loadEndpointList(path string) []string {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var endpoints []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			endpoints = append(endpoints, line)
		}
	}
	return endpoints
}

// matchKnownEndpoint returns the first curated endpoint whose domain
// appears in any of the agency's site fields.
func matchKnownEndpoint(ag *models.Agency, endpoints []string) string {
	if len(endpoints) == 0 {
		return ""
	}

	candidates := []string{ag.Site, ag.SiteName, ag.SitePrefix, ag.Logo, ag.Address}
	var lowered []string
	for _, c := range candidates {
		if c != "" {
			lowered = append(lowered, strings.ToLower(c))
		}
	}

	for _, ep := range endpoints {
		domain := domainFromURL(ep)
		if domain == "" {
			continue
		}
		for _, c := range lowered {
			if strings.Contains(c, domain) {
				return ep
			}
		}
	}
	return ""
}

func domainFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
