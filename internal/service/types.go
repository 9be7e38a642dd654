// Package service provides the business logic layer for logpost.
// It wraps the storage, compose, publishing and config packages behind
// one API shared by the CLI, the dashboard and the scheduler.
package service

import (
	"github.com/xolan/logpost/internal/entry"
	"github.com/xolan/logpost/internal/storage"
)

// ListResult contains the results of listing entries
type ListResult struct {
	Entries  []entry.Entry
	Warnings []storage.ParseWarning
	Period   string // Human-readable period description
	Total    int    // Number of entries in the store, before selection
}

// CheckResult is the outcome of checking one configuration file
type CheckResult struct {
	Name   string
	Path   string
	OK     bool
	Detail string
}
