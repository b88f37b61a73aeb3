// Package slapolicy decides when an assigned listing has blown through its
// service-level deadline. Allowed durations are per service type, with a
// compiled-in table that a YAML file can override.
package slapolicy

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
)

// Verdict is the result of evaluating one assigned listing.
type Verdict struct {
	Overdue      bool
	HoursOverdue float64
	Deadline     time.Time
}

// Provider evaluates SLA deadlines. The grace period after a warning is the
// sweep's concern, not the policy's.
type Provider interface {
	Evaluate(serviceType model.ServiceType, acceptedAt time.Time, scheduledFor *time.Time, now time.Time) Verdict
}

// defaultAllowedHours is the compiled-in deadline table. Types absent from the
// table fall back to DefaultAllowedHours.
var defaultAllowedHours = map[model.ServiceType]float64{
	model.ServicePanelInstall:      14 * 24,
	model.ServicePanelRemoval:      7 * 24,
	model.ServicePanelCleaning:     5 * 24,
	model.ServiceRoofRepair:        10 * 24,
	model.ServiceElectricalUpgrade: 10 * 24,
	model.ServiceInverterInstall:   7 * 24,
	model.ServiceInverterRepair:    3 * 24,
	model.ServiceBatteryInstall:    10 * 24,
	model.ServiceEVChargerInstall:  7 * 24,
	model.ServiceSystemInspection:  5 * 24,
	model.ServiceSystemMaintenance: 5 * 24,
	model.ServiceMonitoringSetup:   3 * 24,
	model.ServicePermitSurvey:      7 * 24,
	model.ServiceSiteAssessment:    5 * 24,
	model.ServiceTreeTrimming:      7 * 24,
}

// DefaultAllowedHours applies to service types with no table entry.
const DefaultAllowedHours = 7 * 24

// TablePolicy is the standard Provider.
type TablePolicy struct {
	allowedHours map[model.ServiceType]float64
}

func NewTablePolicy() *TablePolicy {
	table := make(map[model.ServiceType]float64, len(defaultAllowedHours))
	for k, v := range defaultAllowedHours {
		table[k] = v
	}
	return &TablePolicy{allowedHours: table}
}

// LoadTablePolicy reads per-type overrides from a YAML file of the form
// `service_type: allowed_hours` and merges them over the defaults.
func LoadTablePolicy(path string) (*TablePolicy, error) {
	p := NewTablePolicy()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sla policy: %w", err)
	}
	var overrides map[model.ServiceType]float64
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse sla policy: %w", err)
	}
	for k, v := range overrides {
		if v > 0 {
			p.allowedHours[k] = v
		}
	}
	return p, nil
}

// Evaluate computes the deadline from the accepted time, or from the
// scheduled time when the poster pinned one, and reports how far past it the
// listing is.
func (p *TablePolicy) Evaluate(serviceType model.ServiceType, acceptedAt time.Time, scheduledFor *time.Time, now time.Time) Verdict {
	allowed := p.allowedHours[serviceType]
	if allowed <= 0 {
		allowed = DefaultAllowedHours
	}

	deadline := acceptedAt.Add(time.Duration(allowed * float64(time.Hour)))
	if scheduledFor != nil && scheduledFor.After(deadline) {
		deadline = *scheduledFor
	}

	v := Verdict{Deadline: deadline}
	if now.After(deadline) {
		v.Overdue = true
		v.HoursOverdue = now.Sub(deadline).Hours()
	}
	return v
}
