package entity

import "time"

// CSVUpload tracks one celebrant-import run.
type CSVUpload struct {
	Id               int64     `json:"id,omitempty"`
	Filename         string    `json:"filename"`
	UploadDate       time.Time `json:"upload_date,omitempty"`
	RecordsProcessed int       `json:"records_processed"`
	RecordsAdded     int       `json:"records_added"`
	RecordsUpdated   int       `json:"records_updated"`
	Success          bool      `json:"success"`
	ErrorMessage     string    `json:"error_message,omitempty"`
}
