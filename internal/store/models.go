package store

import "time"

// CheckRun records one database connectivity check
type CheckRun struct {
	ID            int64
	Dialect       string
	Target        string // connection URL with the password redacted
	Status        string // "success", "failed"
	ErrorKind     string // "configuration", "connectivity", "query" or empty
	ErrorMessage  string
	ServerVersion string
	TableCount    int
	StartTime     time.Time
	EndTime       time.Time
}

// SplitRun records the outcome of one target tree of a repository split
type SplitRun struct {
	ID           int64
	SourceRoot   string
	Target       string // "backend" or "frontend"
	Destination  string
	Stage        string // last stage reached
	FilesCopied  int
	FilesSkipped int
	VCSFailures  int
	Status       string // "success", "partial", "failed"
	ErrorMessage string
	StartTime    time.Time
	EndTime      time.Time
}
