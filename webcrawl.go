// Package webcrawl provides a bounded-concurrency web crawler.
// Starting from a root URL it fetches pages, follows their links breadth-first
// up to a depth limit, and reports which pages were downloaded and which
// failed. Total fetch and extract concurrency are bounded, and so is the
// number of concurrent fetches against any single host.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, http/).
package webcrawl
