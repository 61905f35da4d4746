package xsync

import (
	"github.com/kanohealth/vitalvault/internal/score"
)

// Phase names the orchestrator's position in its state machine:
// idle -> syncing -> succeeded | failed, re-entrant from any terminal
// state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSyncing   Phase = "syncing"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// State is the orchestrator's externally visible condition. Overwritten on
// every transition; one instance per session.
type State struct {
	Phase    Phase
	Progress float64
	Message  string
	Result   *Result
	Err      error
}

// Result is created once on completion and read-only thereafter. It is
// retained until superseded by the next sync attempt.
type Result struct {
	Success      bool       `json:"success"`
	Tier         score.Tier `json:"tier,omitempty"`
	Score        int        `json:"score,omitempty"`
	MetricsCount int        `json:"metricsCount,omitempty"`
	DaysCovered  int        `json:"daysCovered,omitempty"`
	Error        string     `json:"error,omitempty"`
}
