// Package pipeline drives the feed loader: it gates loads on connectivity,
// sequences start and reset on the dispatcher, applies settings changes, and
// refreshes the feed on a timer.
package pipeline
