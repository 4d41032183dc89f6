package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// IndexSchema is the SQL schema for the derived element search index. The
// index holds no authoritative data: it can be dropped and rebuilt from
// the element files at any time.
const IndexSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS elements_fts USING fts5(
    name,
    content,
    project_id UNINDEXED,
    element_type UNINDEXED,
    element_id UNINDEXED
);
`

// SearchIndex is an FTS5 full-text index over element names and content.
type SearchIndex struct {
	db *sql.DB
}

// SearchHit is one matched element.
type SearchHit struct {
	ProjectID   string `json:"project_id"`
	ElementType string `json:"element_type"`
	ElementID   string `json:"element_id"`
	Name        string `json:"name"`
}

// OpenIndex opens (or creates) the index database at the given path.
func OpenIndex(dbPath string) (*SearchIndex, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	if _, err := db.Exec(IndexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate index db: %w", err)
	}
	return &SearchIndex{db: db}, nil
}

// Close closes the database connection.
func (x *SearchIndex) Close() error {
	return x.db.Close()
}

// Put replaces the index row for an element.
func (x *SearchIndex) Put(projectID, elementType, elementID, name, content string) error {
	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`DELETE FROM elements_fts WHERE project_id = ? AND element_type = ? AND element_id = ?`,
		projectID, elementType, elementID,
	)
	if err != nil {
		return fmt.Errorf("delete stale index row: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO elements_fts (name, content, project_id, element_type, element_id) VALUES (?, ?, ?, ?, ?)`,
		name, content, projectID, elementType, elementID,
	)
	if err != nil {
		return fmt.Errorf("insert index row: %w", err)
	}
	return tx.Commit()
}

// DeleteProject removes every index row for a project, ahead of a rebuild.
func (x *SearchIndex) DeleteProject(projectID string) error {
	if _, err := x.db.Exec(`DELETE FROM elements_fts WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clear project index: %w", err)
	}
	return nil
}

// Search runs an FTS5 query scoped to one project.
func (x *SearchIndex) Search(projectID, query string) ([]SearchHit, error) {
	rows, err := x.db.Query(
		`SELECT project_id, element_type, element_id, name
		 FROM elements_fts
		 WHERE elements_fts MATCH ? AND project_id = ?
		 ORDER BY rank`,
		query, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("search elements fts: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.ProjectID, &h.ElementType, &h.ElementID, &h.Name); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
