package dto

import (
	"time"

	"github.com/noah-isme/event-dashboard-api/internal/models"
)

// ImportRowError describes a single row that could not be imported.
type ImportRowError struct {
	Row    int    `json:"row"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Format   string           `json:"format"`
	DryRun   bool             `json:"dry_run"`
	Total    int              `json:"total"`
	Imported int              `json:"imported"`
	Failed   []ImportRowError `json:"failed"`
	Events   []models.Event   `json:"events"`
}

// FileResult is a rendered file ready to be sent to a client.
type FileResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BackupResult describes a stored snapshot and its signed download link.
type BackupResult struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Size      int       `json:"size"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
