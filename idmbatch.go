// Package idmbatch forwards download links scraped from a rendered web page
// to an external download manager in user-sized batches.
//
// It fetches the fully rendered page through a headless browser, extracts the
// site's download anchors, and hands the links to the download manager's
// command-line interface one batch at a time, pausing between batches until
// the user asks for the next one.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package idmbatch
