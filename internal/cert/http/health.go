package http

import (
	"net/http"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/cache"
	"github.com/cypheracademy/certvault/internal/cert/ledger"
	"github.com/cypheracademy/certvault/internal/cert/store"
	"github.com/cypheracademy/certvault/pkg/httpx"
)

type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Ledger   string `json:"ledger,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// LivezHandler reports process liveness. It never checks dependencies,
// a live process with a dead database is still live.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler checks the dependencies a request actually needs:
// database, ledger node, and the optional cache. Any failed check
// degrades the response to 503.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	ldg ledger.Client,
	che *cache.Client,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{
			Database: "ok",
			Ledger:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := ldg.Ping(r.Context()); err != nil {
			checks.Ledger = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// The cache is optional; skip the check entirely when it was
		// never configured.
		if che != nil {
			checks.Cache = "ok"
			if err := che.Health(r.Context()); err != nil {
				checks.Cache = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		response := HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
