// Package domain defines the side-car ledger entities shared by the scanner
// finalizer and the merge phase
package domain

// MappingEntry is one row of the private-ID mapping side-car. DateAdded is
// date-only and set when the entry is first created
type MappingEntry struct {
	PrivateID      string
	RepositoryName string
	RepositoryURL  string
	Organization   string
	ContactEmails  []string
	DateAdded      string
}

// ResolveRequest carries the record context available when a private ID is
// assigned. PlatformRepoID may be empty; the manager then falls back to a
// random suffix keyed by repository name
type ResolveRequest struct {
	Platform       string
	PlatformRepoID string
	RepositoryName string
	RepositoryURL  string
	Organization   string
	ContactEmails  []string
}

// ExemptionEntry is one row of the exemption audit log. The manager stamps
// the timestamp on append
type ExemptionEntry struct {
	PrivateID      string
	RepositoryName string
	Reason         string
	UsageType      string
	ExemptionText  string
}

// MappingPort assigns stable private IDs and keeps their audit rows current
type MappingPort interface {
	// Resolve returns the repository's private ID, creating or updating
	// the mapping row as needed
	Resolve(req ResolveRequest) (string, error)

	// Save serializes the mapping to its CSV file
	Save() error
}

// ExemptionPort records exemption decisions, one row per repository name
type ExemptionPort interface {
	// Append writes one row unless the repository was already logged.
	// It reports whether a row was written
	Append(e ExemptionEntry) (bool, error)

	// Close releases the underlying file
	Close() error
}
