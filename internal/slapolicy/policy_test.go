package slapolicy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
)

func TestEvaluate(t *testing.T) {
	policy := NewTablePolicy()
	accepted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		serviceType model.ServiceType
		now         time.Time
		wantOverdue bool
		wantHours   float64
	}{
		{
			name:        "panel install within 14 days",
			serviceType: model.ServicePanelInstall,
			now:         accepted.Add(13 * 24 * time.Hour),
			wantOverdue: false,
		},
		{
			name:        "panel install past 14 days",
			serviceType: model.ServicePanelInstall,
			now:         accepted.Add(15 * 24 * time.Hour),
			wantOverdue: true,
			wantHours:   24,
		},
		{
			name:        "inverter repair past 3 days",
			serviceType: model.ServiceInverterRepair,
			now:         accepted.Add(4 * 24 * time.Hour),
			wantOverdue: true,
			wantHours:   24,
		},
		{
			name:        "unknown type uses the default week",
			serviceType: model.ServiceType("something_new"),
			now:         accepted.Add(6 * 24 * time.Hour),
			wantOverdue: false,
		},
		{
			name:        "exactly at deadline is not overdue",
			serviceType: model.ServicePanelInstall,
			now:         accepted.Add(14 * 24 * time.Hour),
			wantOverdue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := policy.Evaluate(tt.serviceType, accepted, nil, tt.now)
			if v.Overdue != tt.wantOverdue {
				t.Errorf("overdue = %v, want %v", v.Overdue, tt.wantOverdue)
			}
			if tt.wantOverdue && (v.HoursOverdue < tt.wantHours-0.01 || v.HoursOverdue > tt.wantHours+0.01) {
				t.Errorf("hours overdue = %v, want %v", v.HoursOverdue, tt.wantHours)
			}
		})
	}
}

func TestEvaluateScheduledForExtendsDeadline(t *testing.T) {
	policy := NewTablePolicy()
	accepted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scheduled := accepted.Add(30 * 24 * time.Hour)

	now := accepted.Add(20 * 24 * time.Hour) // past the table deadline, before the scheduled date
	v := policy.Evaluate(model.ServicePanelInstall, accepted, &scheduled, now)
	if v.Overdue {
		t.Errorf("overdue before the scheduled date; deadline = %v", v.Deadline)
	}
	if !v.Deadline.Equal(scheduled) {
		t.Errorf("deadline = %v, want the scheduled date %v", v.Deadline, scheduled)
	}

	// A scheduled date earlier than the table deadline does not shorten it.
	early := accepted.Add(24 * time.Hour)
	v = policy.Evaluate(model.ServicePanelInstall, accepted, &early, accepted.Add(2*24*time.Hour))
	if v.Overdue {
		t.Error("early scheduled date shortened the allowed window")
	}
}

func TestLoadTablePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sla.yaml")
	content := "panel_install: 48\ntree_trimming: 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	policy, err := LoadTablePolicy(path)
	if err != nil {
		t.Fatalf("LoadTablePolicy: %v", err)
	}

	accepted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Overridden to 48 hours.
	v := policy.Evaluate(model.ServicePanelInstall, accepted, nil, accepted.Add(72*time.Hour))
	if !v.Overdue {
		t.Error("override to 48h not applied")
	}

	// A zero override is ignored; the default 7 days stands.
	v = policy.Evaluate(model.ServiceTreeTrimming, accepted, nil, accepted.Add(3*24*time.Hour))
	if v.Overdue {
		t.Error("zero override wiped the default deadline")
	}

	if _, err := LoadTablePolicy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing policy file")
	}
}
