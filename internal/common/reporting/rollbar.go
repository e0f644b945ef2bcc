// Package reporting forwards unrecoverable job errors to Rollbar.
package reporting

import (
	"os"

	"github.com/Barlow1/hoots-sub000/internal/common/config"

	"github.com/rollbar/rollbar-go"
)

// RollbarReporter reports through the process-wide rollbar client.
type RollbarReporter struct{}

// NewRollbarReporter configures rollbar and returns a reporter, or nil when
// no token is configured.
func NewRollbarReporter(cfg *config.Config) *RollbarReporter {
	if cfg.Reporting.RollbarToken == "" {
		return nil
	}

	rollbar.SetToken(cfg.Reporting.RollbarToken)
	rollbar.SetEnvironment(cfg.App.Environment)
	rollbar.SetCodeVersion(cfg.App.Version)
	if host, err := os.Hostname(); err == nil {
		rollbar.SetServerHost(host)
	}
	return &RollbarReporter{}
}

func (r *RollbarReporter) Report(err error, extras map[string]interface{}) {
	rollbar.Error(err, extras)
}

// Close flushes queued items.
func (r *RollbarReporter) Close() {
	rollbar.Wait()
}
