// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

package index

import (
	"fmt"
	"strings"
)

// =============================================================================
// SEARCH RESULT
// =============================================================================

// SearchResult represents a single matching turn
type SearchResult struct {
	Conversation string
	Position     int
	Role         string
	Snippet      string
	Rank         float64 // bm25 rank, lower is better
}

// SearchOptions configures search behavior
type SearchOptions struct {
	// MaxResults limits the number of results (0 = unlimited)
	MaxResults int

	// Roles filters by turn author (empty = all)
	Roles []string

	// Conversation restricts the search to one conversation (empty = all)
	Conversation string
}

// DefaultSearchOptions returns default search options
func DefaultSearchOptions() *SearchOptions {
	return &SearchOptions{
		MaxResults: 50,
	}
}

// =============================================================================
// SEARCH METHODS
// =============================================================================

// Search finds turns matching the query using full-text search
func (idx *TranscriptIndex) Search(query string, options *SearchOptions) ([]SearchResult, error) {
	if !idx.IsSynced() {
		return nil, ErrNotSynced
	}

	if options == nil {
		options = DefaultSearchOptions()
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return []SearchResult{}, nil
	}

	sqlQuery := `
		SELECT
			c.name, t.position, t.role,
			snippet(turns_fts, 0, '', '', '...', 12),
			fts.rank
		FROM turns_fts fts
		JOIN turns t ON t.id = fts.rowid
		JOIN conversations c ON c.id = t.conversation_id
		WHERE turns_fts MATCH ?
	`

	var args []interface{}
	args = append(args, ftsQuery)

	var conditions []string

	if len(options.Roles) > 0 {
		placeholders := make([]string, len(options.Roles))
		for i, role := range options.Roles {
			placeholders[i] = "?"
			args = append(args, role)
		}
		conditions = append(conditions, "t.role IN ("+strings.Join(placeholders, ",")+")")
	}

	if options.Conversation != "" {
		conditions = append(conditions, "c.name = ?")
		args = append(args, options.Conversation)
	}

	if len(conditions) > 0 {
		sqlQuery += " AND " + strings.Join(conditions, " AND ")
	}

	// bm25 assigns the best match the lowest rank
	sqlQuery += " ORDER BY fts.rank"

	if options.MaxResults > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, options.MaxResults)
	}

	rows, err := idx.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var result SearchResult
		if err := rows.Scan(
			&result.Conversation,
			&result.Position,
			&result.Role,
			&result.Snippet,
			&result.Rank,
		); err != nil {
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

// Conversations returns the names of all indexed conversations
func (idx *TranscriptIndex) Conversations() ([]string, error) {
	if !idx.IsSynced() {
		return nil, ErrNotSynced
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	rows, err := idx.db.Query("SELECT name FROM conversations ORDER BY mod_time DESC")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			names = append(names, name)
		}
	}

	return names, nil
}

// buildFTSQuery builds an FTS5 query from user input
func buildFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	// Quote each term so FTS5 operators in user input stay literal, and
	// prefix-match the last term for search-as-you-type behavior.
	terms := strings.Fields(query)
	quoted := make([]string, len(terms))
	for i, term := range terms {
		term = strings.ReplaceAll(term, `"`, `""`)
		quoted[i] = `"` + term + `"`
	}
	quoted[len(quoted)-1] += "*"

	return strings.Join(quoted, " ")
}
