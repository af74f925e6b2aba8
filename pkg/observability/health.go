package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// ReadyCheck returns nil once its subsystem can serve.
type ReadyCheck func(ctx context.Context) error

type healthReport struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// HealthHandler always reports {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		respond(rw, http.StatusOK, healthReport{Status: "ok"})
	})
}

// ReadyHandler runs every check and answers 503 with the joined failures
// when any of them fails.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		var failures []error
		for _, check := range checks {
			failures = append(failures, check(req.Context()))
		}

		if err := errors.Join(failures...); err != nil {
			respond(rw, http.StatusServiceUnavailable, healthReport{Status: "unavailable", Reason: err.Error()})

			return
		}

		respond(rw, http.StatusOK, healthReport{Status: "ok"})
	})
}

func respond(rw http.ResponseWriter, code int, report healthReport) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	_ = json.NewEncoder(rw).Encode(report) //nolint:errchkjson // probe body is best effort.
}
