package workers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"proplookup/models"
	"proplookup/storage"
)

// SiteCheckWorker probes each agency's configured feed endpoints and
// websites so the dashboard can flag dead integrations before a refresh
// fails on them.
type SiteCheckWorker struct {
	store      *storage.PostgresStore
	httpClient *http.Client
	feedBases  FeedBases
	triggerCh  chan struct{}
	logFunc    LogFunc
}

// FeedBases carries the provider base URLs the probes are built from.
type FeedBases struct {
	MyHome   string
	Acquaint string
	Daft     string
}

func NewSiteCheckWorker(store *storage.PostgresStore, client *http.Client, bases FeedBases) *SiteCheckWorker {
	if client == nil {
		client = &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &SiteCheckWorker{
		store:      store,
		httpClient: client,
		feedBases:  bases,
		triggerCh:  make(chan struct{}, 1),
		logFunc:    NoOpLogger,
	}
}

func (w *SiteCheckWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately.
func (w *SiteCheckWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the site check loop.
func (w *SiteCheckWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Site check worker stopping")
			return
		case <-ticker.C:
			w.checkAll(ctx)
		case <-w.triggerCh:
			log.Println("Site check worker triggered manually")
			w.checkAll(ctx)
		}
	}
}

func (w *SiteCheckWorker) checkAll(ctx context.Context) {
	agencies, err := w.store.ListAgencies(ctx)
	if err != nil {
		log.Printf("Site check: list agencies: %v", err)
		return
	}

	for i := range agencies {
		if ctx.Err() != nil {
			return
		}
		w.checkAgency(ctx, &agencies[i])
	}
}

func (w *SiteCheckWorker) checkAgency(ctx context.Context, ag *models.Agency) {
	for _, ep := range w.endpoints(ag) {
		ok, status := w.probe(ctx, ep.url)
		if ok {
			continue
		}
		msg := fmt.Sprintf("%s endpoint unreachable (%s): %s", ep.name, status, ep.url)
		log.Printf("Site check %s: %s", ag.Name, msg)
		w.logFunc(models.LogWarn, ag.UniqueKey, msg)
	}
}

type checkEndpoint struct {
	name string
	url  string
}

func (w *SiteCheckWorker) endpoints(ag *models.Agency) []checkEndpoint {
	var eps []checkEndpoint
	if ag.Site != "" {
		eps = append(eps, checkEndpoint{"website", ag.Site})
	}
	if ag.MyHomeAPIKey != "" && w.feedBases.MyHome != "" {
		eps = append(eps, checkEndpoint{"myhome",
			fmt.Sprintf("%s/search/%s?format=json&PageSize=1", w.feedBases.MyHome, ag.MyHomeAPIKey)})
	}
	if prefix := ag.AcquaintPrefix(); prefix != "" && w.feedBases.Acquaint != "" {
		eps = append(eps, checkEndpoint{"acquaint",
			fmt.Sprintf("%s/datafeeds/standardxml/%s-0.xml", w.feedBases.Acquaint, prefix)})
	}
	if ag.DaftAPIKey != "" && w.feedBases.Daft != "" {
		eps = append(eps, checkEndpoint{"daft",
			fmt.Sprintf("%s/property?key=%s", w.feedBases.Daft, ag.DaftAPIKey)})
	}
	if ag.WordPressURL != "" {
		eps = append(eps, checkEndpoint{"wordpress", ag.WordPressURL})
	}
	return eps
}

// probe issues a HEAD request and treats any response below 500 as the
// endpoint being alive. Feed APIs often reject HEAD with 405; that still
// proves the host answers.
func (w *SiteCheckWorker) probe(ctx context.Context, endpoint string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", endpoint, nil)
	if err != nil {
		return false, err.Error()
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return false, err.Error()
	}
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return false, resp.Status
	}
	return true, resp.Status
}
