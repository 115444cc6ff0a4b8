// Package lines turns per-page recognizer output into one clean, ordered
// sequence of logical lines.
//
// The stages are pure and safe for concurrent use:
//
//	Sanitize     one recognizer's raw lines for one page
//	Merge        flatten both recognizers across pages and drop duplicates
//	Reconstruct  rejoin split fragments into label/value units
package lines
