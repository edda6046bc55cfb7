package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ledmatrix/matrixstore/internal/registry"
)

// Result represents a search result
type Result struct {
	Entry registry.Entry
	Score int // Higher is better
}

// entrySearchable wraps registry entries for fuzzy searching
type entrySearchable []registry.Entry

// String returns the searchable string for an entry
func (e entrySearchable) String(i int) string {
	entry := e[i]
	parts := []string{entry.ID, entry.Name}

	if entry.Description != "" {
		parts = append(parts, entry.Description)
	}

	parts = append(parts, entry.Tags...)

	if entry.Category != "" {
		parts = append(parts, entry.Category)
	}

	return strings.ToLower(strings.Join(parts, " "))
}

// Len returns the number of entries
func (e entrySearchable) Len() int {
	return len(e)
}

// FuzzySearch performs a fuzzy search across the registry document
func FuzzySearch(doc *registry.Document, query string) []Result {
	query = strings.ToLower(query)
	if query == "" || len(doc.Plugins) == 0 {
		return nil
	}

	searchable := entrySearchable(doc.Plugins)
	matches := fuzzy.FindFrom(query, searchable)

	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		results = append(results, Result{
			Entry: doc.Plugins[match.Index],
			Score: match.Score,
		})
	}

	// Sort by score (descending)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// SimpleSearch performs a simple substring search
func SimpleSearch(doc *registry.Document, query string) []Result {
	query = strings.ToLower(query)

	var results []Result
	for _, entry := range doc.Plugins {
		if matchesQuery(entry, query) {
			results = append(results, Result{
				Entry: entry,
				Score: 100, // Default score for simple matches
			})
		}
	}

	return results
}

// matchesQuery checks if an entry matches the search query
func matchesQuery(entry registry.Entry, query string) bool {
	if strings.Contains(strings.ToLower(entry.ID), query) {
		return true
	}
	if strings.Contains(strings.ToLower(entry.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(entry.Description), query) {
		return true
	}
	for _, tag := range entry.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(entry.Category), query) {
		return true
	}
	return false
}
