package httputil

import (
	"net/http"
	"time"

	"proplookup/config"
)

type Clients struct {
	Feeds *http.Client // provider APIs and datafeeds
	Probe *http.Client // site availability checks
}

func NewClients(feedsCfg *config.FeedsConfig) *Clients {
	timeout := 30 * time.Second
	if feedsCfg != nil && feedsCfg.TimeoutMS > 0 {
		timeout = time.Duration(feedsCfg.TimeoutMS) * time.Millisecond
	}

	// Probes only care whether an endpoint answers, not where redirects
	// lead, so they stop at the first response.
	probe := &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Clients{
		Feeds: &http.Client{Timeout: timeout},
		Probe: probe,
	}
}
