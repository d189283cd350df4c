package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunSnapshot is the full result of one pipeline run. It is handed to
// the report writers and then dropped
type RunSnapshot struct {
	RunID      uuid.UUID       `json:"runId"`
	Date       time.Time       `json:"date"`
	DryRun     bool            `json:"dryRun"`
	Skipped    bool            `json:"skipped"`
	SkipReason string          `json:"skipReason,omitempty"`
	Account    AccountSnapshot `json:"account"`
	Universe   []string        `json:"universe"`
	Signals    []Signal        `json:"signals"`
	Outcomes   []OrderOutcome  `json:"outcomes"`
	Timings    []*Span         `json:"timings,omitempty"`
}

func AssembleRunSnapshot(date time.Time, account AccountSnapshot, signals []Signal, outcomes []OrderOutcome) RunSnapshot {
	if signals == nil {
		signals = []Signal{}
	}
	if outcomes == nil {
		outcomes = []OrderOutcome{}
	}
	return RunSnapshot{
		RunID:    uuid.New(),
		Date:     date,
		Account:  account,
		Universe: []string{},
		Signals:  signals,
		Outcomes: outcomes,
	}
}

// NewSkippedRunSnapshot is used when the market gate says no
func NewSkippedRunSnapshot(date time.Time, reason string) RunSnapshot {
	out := AssembleRunSnapshot(date, AccountSnapshot{}, nil, nil)
	out.Skipped = true
	out.SkipReason = reason
	return out
}

type RunSummary struct {
	SymbolsAnalyzed   int                  `json:"symbolsAnalyzed"`
	SignalsByAction   map[SignalAction]int `json:"signalsByAction"`
	OutcomesByStatus  map[OrderStatus]int  `json:"outcomesByStatus"`
	SymbolsWithErrors int                  `json:"symbolsWithErrors"`
}

func (r RunSnapshot) Summary() RunSummary {
	out := RunSummary{
		SymbolsAnalyzed:  len(r.Signals),
		SignalsByAction:  map[SignalAction]int{},
		OutcomesByStatus: map[OrderStatus]int{},
	}
	for _, s := range r.Signals {
		out.SignalsByAction[s.Action]++
		if s.Error != nil {
			out.SymbolsWithErrors++
		}
	}
	for _, o := range r.Outcomes {
		out.OutcomesByStatus[o.Status]++
	}
	return out
}

func (r RunSnapshot) TradesSubmitted() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == OrderStatus_Submitted {
			n++
		}
	}
	return n
}
