package usage

import "sync"

// Static AWS pricing, USD per unit.
const (
	PriceTranslatePerChar  = 0.000015
	PriceComprehendPerCall = 0.0001
	PriceTranscribePerSec  = 0.0004
)

const (
	ServiceTranslate  = "Amazon Translate"
	ServiceComprehend = "Amazon Comprehend"
	ServiceTranscribe = "Amazon Transcribe"
	ServiceTotal      = "TOTAL"
)

// Totals holds the raw usage counters for one run.
type Totals struct {
	TranslateChars    int64 `json:"translate_chars"`
	ComprehendCalls   int64 `json:"comprehend_calls"`
	TranscribeSeconds int64 `json:"transcribe_seconds"`
}

// CostRow is one line of the cost table. The TOTAL row carries the sum
// of the three service costs and no usage quantity.
type CostRow struct {
	Service string  `json:"service"`
	Usage   int64   `json:"usage"`
	Cost    float64 `json:"cost_usd"`
}

// Meter accumulates provider usage. Counters only ever increase and are
// credited exactly once per qualifying provider event. The mutex keeps
// increments safe if items are ever processed in parallel.
type Meter struct {
	mu     sync.Mutex
	totals Totals
}

func NewMeter() *Meter {
	return &Meter{}
}

func (m *Meter) RecordTranslation(chars int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals.TranslateChars += int64(chars)
}

func (m *Meter) RecordScoringCall() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals.ComprehendCalls++
}

func (m *Meter) RecordTranscriptionSeconds(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals.TranscribeSeconds += int64(seconds)
}

func (m *Meter) Snapshot() Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals
}

// ComputeCosts derives the cost table from the current counters. It is a
// pure function of the snapshot: unchanged counters give identical rows.
func (m *Meter) ComputeCosts() []CostRow {
	t := m.Snapshot()

	translateCost := float64(t.TranslateChars) * PriceTranslatePerChar
	comprehendCost := float64(t.ComprehendCalls) * PriceComprehendPerCall
	transcribeCost := float64(t.TranscribeSeconds) * PriceTranscribePerSec

	return []CostRow{
		{Service: ServiceTranslate, Usage: t.TranslateChars, Cost: translateCost},
		{Service: ServiceComprehend, Usage: t.ComprehendCalls, Cost: comprehendCost},
		{Service: ServiceTranscribe, Usage: t.TranscribeSeconds, Cost: transcribeCost},
		{Service: ServiceTotal, Cost: translateCost + comprehendCost + transcribeCost},
	}
}
