package records

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Builds kept in the database before pruning. One previous build is all
// the pipeline reads; the rest is kept for debugging.
const keptBuilds = 10

// BuildRepository handles database operations for build records
type BuildRepository struct {
	db *DB
}

var _ Repository = (*BuildRepository)(nil)

// NewBuildRepository creates a new build record repository
func NewBuildRepository(db *DB) *BuildRepository {
	return &BuildRepository{db: db}
}

// LoadLatest returns the most recent build record, or nil if none exists.
func (r *BuildRepository) LoadLatest() (*Record, error) {
	record := &Record{}
	err := r.db.QueryRow(`
		SELECT id, version, created_at
		FROM builds
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&record.ID, &record.Version, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest build: %w", err)
	}

	if err := r.loadPostEntries(record); err != nil {
		return nil, err
	}
	if err := r.loadArchiveEntries(record); err != nil {
		return nil, err
	}

	return record, nil
}

// Save stores a build record and prunes old builds.
func (r *BuildRepository) Save(record *Record) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO builds (version, created_at) VALUES (?, ?)
	`, record.Version, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert build: %w", err)
	}
	buildID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get build id: %w", err)
	}
	record.ID = buildID

	for _, entry := range record.Posts {
		_, err := tx.Exec(`
			INSERT INTO post_entries (build_id, spec, timestamp, content_hash, sub_baked, out_path)
			VALUES (?, ?, ?, ?, ?, ?)
		`, buildID, entry.Spec, entry.Timestamp, entry.ContentHash, entry.SubBaked, entry.OutPath)
		if err != nil {
			return fmt.Errorf("failed to insert post entry %s: %w", entry.Spec, err)
		}
	}

	for _, entry := range record.Archives {
		outPaths, err := json.Marshal(entry.OutPaths)
		if err != nil {
			return fmt.Errorf("failed to encode out paths: %w", err)
		}
		bakeErrors, err := json.Marshal(entry.Errors)
		if err != nil {
			return fmt.Errorf("failed to encode errors: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO archive_entries (build_id, year, out_paths, errors)
			VALUES (?, ?, ?, ?)
		`, buildID, entry.Year, string(outPaths), string(bakeErrors))
		if err != nil {
			return fmt.Errorf("failed to insert archive entry %s: %w", entry.Year, err)
		}
	}

	_, err = tx.Exec(`
		DELETE FROM builds
		WHERE id NOT IN (SELECT id FROM builds ORDER BY id DESC LIMIT ?)
	`, keptBuilds)
	if err != nil {
		return fmt.Errorf("failed to prune old builds: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit build record: %w", err)
	}

	return nil
}

func (r *BuildRepository) loadPostEntries(record *Record) error {
	rows, err := r.db.Query(`
		SELECT spec, timestamp, content_hash, sub_baked, out_path
		FROM post_entries
		WHERE build_id = ?
		ORDER BY id
	`, record.ID)
	if err != nil {
		return fmt.Errorf("failed to load post entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry PostEntry
		err := rows.Scan(&entry.Spec, &entry.Timestamp, &entry.ContentHash,
			&entry.SubBaked, &entry.OutPath)
		if err != nil {
			return fmt.Errorf("failed to scan post entry: %w", err)
		}
		record.Posts = append(record.Posts, entry)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating post entries: %w", err)
	}

	return nil
}

func (r *BuildRepository) loadArchiveEntries(record *Record) error {
	rows, err := r.db.Query(`
		SELECT year, out_paths, errors
		FROM archive_entries
		WHERE build_id = ?
		ORDER BY id
	`, record.ID)
	if err != nil {
		return fmt.Errorf("failed to load archive entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry ArchiveEntry
		var outPaths, bakeErrors string
		if err := rows.Scan(&entry.Year, &outPaths, &bakeErrors); err != nil {
			return fmt.Errorf("failed to scan archive entry: %w", err)
		}
		if err := json.Unmarshal([]byte(outPaths), &entry.OutPaths); err != nil {
			return fmt.Errorf("failed to decode out paths: %w", err)
		}
		if err := json.Unmarshal([]byte(bakeErrors), &entry.Errors); err != nil {
			return fmt.Errorf("failed to decode errors: %w", err)
		}
		record.Archives = append(record.Archives, entry)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating archive entries: %w", err)
	}

	return nil
}
