package domain

import "time"

// StepName identifies a stage of the creation chain.
type StepName string

const (
	StepGenerate StepName = "generate"
	StepSave     StepName = "save"
)

// JobStatus enumerates step and chain outcomes.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// FailureKind classifies why a step failed.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureEmptyText  FailureKind = "empty_text"
	FailureEncode     FailureKind = "encode_error"
	FailureTempWrite  FailureKind = "temp_write_error"
	FailureTempRead   FailureKind = "temp_read_error"
	FailureStore      FailureKind = "store_error"
	FailureUnexpected FailureKind = "unexpected"
)

// CreationRequest is one "create QR code for text" request.
type CreationRequest struct {
	ID          string
	Text        string
	Locale      string
	RequestedAt time.Time
}

// GenerateResult is produced by the generate step and consumed only by the save step.
type GenerateResult struct {
	Status  JobStatus
	FileRef string
	Failure FailureKind
	Err     error
}

// Succeeded reports whether the step produced a file reference.
func (r GenerateResult) Succeeded() bool {
	return r.Status == JobStatusSucceeded
}

// GenerateSucceeded builds a successful generate result.
func GenerateSucceeded(fileRef string) GenerateResult {
	return GenerateResult{Status: JobStatusSucceeded, FileRef: fileRef}
}

// GenerateFailed builds a failed generate result.
func GenerateFailed(kind FailureKind, err error) GenerateResult {
	return GenerateResult{Status: JobStatusFailed, Failure: kind, Err: err}
}

// SaveResult is the terminal result of a chain that reached the save step.
type SaveResult struct {
	Status       JobStatus
	PublishedURI string
	EntryID      string
	Failure      FailureKind
	Err          error
}

func (r SaveResult) Succeeded() bool {
	return r.Status == JobStatusSucceeded
}

// SaveSucceeded builds a successful save result.
func SaveSucceeded(entryID, uri string) SaveResult {
	return SaveResult{Status: JobStatusSucceeded, EntryID: entryID, PublishedURI: uri}
}

// SaveFailed builds a failed save result.
func SaveFailed(kind FailureKind, err error) SaveResult {
	return SaveResult{Status: JobStatusFailed, Failure: kind, Err: err}
}
