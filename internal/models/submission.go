package models

import "time"

// SchemaVersion tags every submission record written by this system.
const SchemaVersion = "submission-v1"

type SubmissionMeta struct {
	Company        string `json:"company"`
	Actor          string `json:"actor"`
	Year           int    `json:"year"`
	Quarter        string `json:"quarter"`
	MonthInQ       int    `json:"month_in_q"`
	SubmittedAtUTC string `json:"submitted_at_utc"`
	SchemaVersion  string `json:"schema_version"`
}

// Submission is the JSON document stored next to its CSV rendering.
type Submission struct {
	Meta     SubmissionMeta     `json:"meta"`
	Metrics  map[string]float64 `json:"metrics"`
	RawFiles []string           `json:"raw_files,omitempty"`
}

// Artifact points at what a SaveSubmission call wrote: the JSON record and
// its CSV sibling sharing the same stem.
type Artifact struct {
	Key         string    `json:"key"`
	SiblingKey  string    `json:"sibling_key"`
	Location    string    `json:"location,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RawUpload describes one stored raw file.
type RawUpload struct {
	Company          string       `json:"company"`
	Actor            string       `json:"actor"`
	Period           FiscalPeriod `json:"period"`
	OriginalFilename string       `json:"original_filename"`
	StoredFilename   string       `json:"stored_filename"`
	Key              string       `json:"key"`
	Location         string       `json:"location,omitempty"`
	Size             int64        `json:"size"`
	Checksum         string       `json:"checksum"`
	ContentType      string       `json:"content_type"`
	UploadedAt       time.Time    `json:"uploaded_at"`
}
