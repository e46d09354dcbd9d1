package domain

import (
	"strconv"
	"strings"
	"time"
)

// Draw is a single historical drawing event. Instances are built once by the
// normalizer and never mutated afterwards.
type Draw struct {
	Date  time.Time
	Main  []int
	Bonus []int
}

// Key returns a dedup identity built from the date and both ball sequences.
func (d Draw) Key() string {
	var b strings.Builder
	b.WriteString(d.Date.Format("2006-01-02"))
	for _, n := range d.Main {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteByte('#')
	for _, n := range d.Bonus {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// HotCount is one ranked entry of the frequency output.
type HotCount struct {
	Number int `json:"number"`
	Count  int `json:"count"`
}

// HotNumbersReport is the per-source output aggregate persisted to the
// document store and emitted as a local artifact.
type HotNumbersReport struct {
	Source      string     `json:"source"`
	FetchedAt   time.Time  `json:"fetched_at"`
	DrawsTotal  int        `json:"draws_total"`
	DrawsRecent int        `json:"draws_recent"`
	TopMain     []HotCount `json:"top_main"`
	TopBonus    []HotCount `json:"top_bonus"`
}
