// Package types defines the core data structures shared across the dataset
// build pipeline: parsed papers, citation records, fetched metadata, and the
// attributed citation graph.
package types

// Paper is a node parsed from the source corpus: a PubMed article with its
// class label and tf-idf weighted term vector.
type Paper struct {
	PMID    string             `json:"pmid"`
	Label   int                `json:"label"`
	Weights map[string]float32 `json:"weights"`
	Summary string             `json:"summary,omitempty"`
}

// Citation is a directed edge parsed from the source corpus. Source cites
// Target.
type Citation struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Metadata holds per-article publication metadata fetched from the remote
// API. Date is the raw publication date string; Year is extracted from it.
type Metadata struct {
	PMID    string `json:"pmid"`
	Title   string `json:"title,omitempty"`
	Date    string `json:"date,omitempty"`
	Journal string `json:"journal,omitempty"`
}

// TimeUnknown marks a node whose publication time could not be resolved.
const TimeUnknown = -1

// ContextKey is the type of context values propagated through the pipeline.
type ContextKey string

// ContextKeyStage carries the name of the pipeline stage currently running.
const ContextKeyStage ContextKey = "stage"
