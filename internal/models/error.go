package models

import (
	"fmt"
)

const ListingErrorMessage = "Failed to fetch files list from external API"

// ListingError reports that the upstream file listing could not be retrieved.
// It is the only failure that aborts a whole run.
type ListingError struct {
	Err error
}

func (e *ListingError) Error() string {
	return ListingErrorMessage
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

// AppError describes why a single file was left out of the results.
type AppError struct {
	FileName string
	Reason   string
	Message  string
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("File %s: %s - %v", e.FileName, e.Message, e.Err)
	}
	return fmt.Sprintf("File %s: %s", e.FileName, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
