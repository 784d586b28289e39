// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for zld-agent: research
// reports produced by the monitor loop, water analyses, knowledge base
// articles, process scenarios, and the configuration of each component.
package types

import "time"

// ReportStatus is the terminal outcome of one research cycle.
type ReportStatus string

const (
	StatusSuccess ReportStatus = "success"
	StatusFailed  ReportStatus = "failed"
)

// Source is a grounding citation returned alongside AI-generated text.
type Source struct {
	URI   string `json:"uri" yaml:"uri"`
	Title string `json:"title" yaml:"title"`
}

// Report is the outcome of one research cycle. Reports are built once by
// the engine and never modified afterwards.
type Report struct {
	// ID is unique within a process and strictly increasing.
	ID string `json:"id" yaml:"id"`

	// Timestamp is the locale-formatted creation time, for display only.
	Timestamp string `json:"timestamp" yaml:"timestamp"`

	// CreatedAt is the machine-readable creation time.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	Status      ReportStatus `json:"status" yaml:"status"`
	SearchQuery string       `json:"search_query" yaml:"search_query"`

	// Findings is Markdown on success and a localized error message on failure.
	Findings string `json:"findings" yaml:"findings"`

	// Sources keeps the order the gateway returned them in.
	Sources []Source `json:"sources" yaml:"sources"`
}

// Succeeded reports whether the cycle produced findings.
func (r Report) Succeeded() bool {
	return r.Status == StatusSuccess
}

// DeliveryStatus records what happened when the newest report was relayed.
type DeliveryStatus string

const (
	DeliveryNone  DeliveryStatus = ""
	DeliverySent  DeliveryStatus = "sent"
	DeliveryError DeliveryStatus = "error"
)
