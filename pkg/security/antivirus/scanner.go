// Package antivirus scans candidate documents before they are stored.
package antivirus

import "context"

// ScanResult contains the result of a malware scan
type ScanResult struct {
	Infected    bool   // True if malware was detected
	ThreatName  string // Name of detected threat (empty if clean)
	ScannerName string // Name of scanner that produced this result
	Error       error  // Any error that occurred during scanning
}

// Scanner is implemented by malware scanners.
//
// A scan that fails reports Infected=true together with Error, so callers
// that only look at Infected fail closed.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) ScanResult

	// Name returns the scanner implementation name (for logging)
	Name() string

	// Ping checks that the scanner is operational.
	Ping(ctx context.Context) error
}
