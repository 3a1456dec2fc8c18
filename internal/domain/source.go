package domain

import (
	"fmt"
	"time"
)

// SourceStatus represents the ingestion status of a knowledge source
type SourceStatus string

const (
	SourceStatusPending    SourceStatus = "pending"
	SourceStatusProcessing SourceStatus = "processing"
	SourceStatusCompleted  SourceStatus = "completed"
	SourceStatusFailed     SourceStatus = "failed"
)

// KnowledgeSource represents one uploaded document's ingestion lifecycle.
// Created externally as pending; the processor moves it to processing and
// then to exactly one of completed/failed per run.
type KnowledgeSource struct {
	SourceID    string
	Status      SourceStatus
	LastUpdated time.Time
}

// NewKnowledgeSource creates a new KnowledgeSource instance
func NewKnowledgeSource(sourceID string, status SourceStatus, lastUpdated time.Time) *KnowledgeSource {
	return &KnowledgeSource{
		SourceID:    sourceID,
		Status:      status,
		LastUpdated: lastUpdated,
	}
}

// ValidateKnowledgeSource validates a KnowledgeSource instance
func ValidateKnowledgeSource(s *KnowledgeSource) error {
	if s == nil {
		return fmt.Errorf("knowledge source cannot be nil")
	}

	if s.SourceID == "" {
		return fmt.Errorf("knowledge source SourceID is required")
	}

	if !isValidSourceStatus(s.Status) {
		return fmt.Errorf("knowledge source Status is invalid: %s", s.Status)
	}

	return nil
}

// isValidSourceStatus checks if a SourceStatus is valid
func isValidSourceStatus(s SourceStatus) bool {
	switch s {
	case SourceStatusPending, SourceStatusProcessing,
		SourceStatusCompleted, SourceStatusFailed:
		return true
	}
	return false
}
