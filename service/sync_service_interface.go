package service

import (
	"context"
)

// SyncResult counts what a library sync did.
// Inserted = new rows created, Skipped = already known by drive_file_id,
// Invalid = file names that do not describe an asset, Total = image files seen in the folder.
type SyncResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Invalid  int      `json:"invalid"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors,omitempty"`
}

// SyncServiceInterface defines the contract for synchronization operations
type SyncServiceInterface interface {
	// SyncLibrary imports the images of a Drive folder into the asset library.
	// status is set on new rows (defaults to "pending" if empty)
	SyncLibrary(ctx context.Context, folderID string, status string) (*SyncResult, error)
}
