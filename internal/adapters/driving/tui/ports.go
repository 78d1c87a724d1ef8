package tui

import (
	"errors"

	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driving"
)

// Ports bundles the driving ports the TUI needs. All fields are required.
type Ports struct {
	Review  driving.ReviewService
	Bundles driven.BundleStore
}

// Validate checks that all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return errors.New("ports not configured")
	}
	if p.Review == nil {
		return errors.New("review service is required")
	}
	if p.Bundles == nil {
		return errors.New("bundle store is required")
	}
	return nil
}
