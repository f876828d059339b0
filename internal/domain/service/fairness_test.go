package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClaimEligible(t *testing.T) {
	cfg := FairnessConfig{MaxHours: 3.0, LockWindow: 60 * time.Minute}
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

	farStart := now.Add(5 * time.Hour)
	nearStart := now.Add(45 * time.Minute)
	exactStart := now.Add(60 * time.Minute)
	pastStart := now.Add(-10 * time.Minute)

	tests := []struct {
		name       string
		start      *time.Time
		totalHours float64
		want       bool
	}{
		{name: "generic shift ignores hours", start: nil, totalHours: 100.0, want: true},
		{name: "under cap far start", start: &farStart, totalHours: 2.5, want: true},
		{name: "at cap far start", start: &farStart, totalHours: 3.0, want: false},
		{name: "over cap far start", start: &farStart, totalHours: 7.0, want: false},
		{name: "at cap inside lock window", start: &nearStart, totalHours: 3.0, want: true},
		{name: "at cap exactly on window boundary", start: &exactStart, totalHours: 3.0, want: true},
		{name: "at cap already started", start: &pastStart, totalHours: 3.0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, claimEligible(tt.start, tt.totalHours, now, cfg))
		})
	}
}
