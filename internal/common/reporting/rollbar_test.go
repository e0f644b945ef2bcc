package reporting

import (
	"testing"

	"github.com/Barlow1/hoots-sub000/internal/common/config"

	"github.com/stretchr/testify/assert"
)

func TestNewRollbarReporter_DisabledWithoutToken(t *testing.T) {
	assert.Nil(t, NewRollbarReporter(&config.Config{}))
}

func TestNewRollbarReporter_EnabledWithToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.Reporting.RollbarToken = "test-token"
	cfg.App.Environment = "test"

	assert.NotNil(t, NewRollbarReporter(cfg))
}
