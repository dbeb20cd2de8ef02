package sqlite

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jacoblehr/codex/internal/logger"
	"github.com/jacoblehr/codex/pkg/types"
)

// ImportSummary counts the records applied by Import.
type ImportSummary struct {
	Tags      int `json:"tags"`
	Bookmarks int `json:"bookmarks"`
	Links     int `json:"links"`
	Skipped   int `json:"skipped"`
}

// readRecords decodes the export file at path, one record per line. Blank
// lines are ignored and lines that do not decode as a record are counted
// as skipped.
func readRecords(path string) ([]recordJSON, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []recordJSON
	skipped := 0
	scanner := bufio.NewScanner(f)
	// Descriptions can be long; allow lines well past the 64KiB default.
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec recordJSON
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, skipped, nil
}

// writeRecords replaces path with records, one JSON object per line. The
// file is written beside path, synced and renamed into place, so readers
// never see a partial export.
func writeRecords(path string, records []recordJSON) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	// URIs keep their query separators readable.
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err = enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding %s record: %w", rec.Kind, err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Export writes every tag, bookmark and link to path as JSONL. Tags come
// first so an import can resolve bookmark tags by text.
func (s *Store) Export(ctx context.Context, path string) error {
	var records []recordJSON
	err := s.read(func(q Querier) error {
		tags, err := Tags.FindAll(ctx, q, nil)
		if err != nil {
			return err
		}
		for _, t := range tags {
			records = append(records, tagToRecord(t))
		}

		bookmarks, err := Bookmarks.FindAll(ctx, q, nil)
		if err != nil {
			return err
		}
		for _, b := range bookmarks {
			records = append(records, bookmarkToRecord(b))
		}

		links, err := Links.FindAll(ctx, q, nil)
		if err != nil {
			return err
		}
		for _, l := range links {
			records = append(records, linkToRecord(l))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	if err := writeRecords(path, records); err != nil {
		return fmt.Errorf("exporting to %s: %w", path, err)
	}
	s.log.Info("workspace exported", logger.String("path", path), logger.Int("records", len(records)))
	return nil
}

// Import applies the records of an export file in one transaction. Tags are
// matched by text: an existing tag is reused, a missing one is created.
// Bookmarks and links are always inserted as new rows. Malformed lines,
// unknown kinds and records missing their tag text or uri are skipped and
// counted. Any other invalid record aborts the import.
func (s *Store) Import(ctx context.Context, path string) (ImportSummary, error) {
	records, skipped, err := readRecords(path)
	if err != nil {
		return ImportSummary{}, err
	}

	sum := ImportSummary{Skipped: skipped}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range records {
			applied, err := importRecord(ctx, tx, rec)
			if err != nil {
				return err
			}
			switch applied {
			case kindTag:
				sum.Tags++
			case kindBookmark:
				sum.Bookmarks++
			case kindLink:
				sum.Links++
			default:
				sum.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("importing %s: %w", path, err)
	}
	s.log.Info("workspace imported",
		logger.String("path", path),
		logger.Int("tags", sum.Tags),
		logger.Int("bookmarks", sum.Bookmarks),
		logger.Int("links", sum.Links),
		logger.Int("skipped", sum.Skipped))
	return sum, nil
}

// importRecord applies one record and returns its kind, or "" when the
// record was not applied.
func importRecord(ctx context.Context, q Querier, rec recordJSON) (string, error) {
	if rec.incomplete() {
		return "", nil
	}
	switch rec.Kind {
	case kindTag:
		tags, err := ensureTags(ctx, q, []string{rec.Tag})
		if err != nil {
			return "", err
		}
		if rec.Color != nil {
			if _, err := Tags.Update(ctx, q, tags[0].ID, types.TagInput{Tag: rec.Tag, Color: rec.Color}); err != nil {
				return "", err
			}
		}
		return kindTag, nil

	case kindBookmark:
		tags, err := ensureTags(ctx, q, rec.Tags)
		if err != nil {
			return "", err
		}
		b, err := Bookmarks.Create(ctx, q, types.BookmarkInput{
			URI:         rec.URI,
			Name:        rec.Name,
			Description: rec.Description,
			ImageURI:    rec.ImageURI,
		})
		if err != nil {
			return "", err
		}
		if err := reconcileBookmarkTags(ctx, q, b.ID, nil, tags); err != nil {
			return "", err
		}
		if err := restoreTimestamps(ctx, q, types.TableBookmarks, b.ID, rec); err != nil {
			return "", err
		}
		return kindBookmark, nil

	case kindLink:
		l, err := Links.Create(ctx, q, types.LinkInput{
			URI:         rec.URI,
			Name:        rec.Name,
			Description: rec.Description,
		})
		if err != nil {
			return "", err
		}
		if err := reconcileLinkTags(ctx, q, l.ID, nil, rec.Tags); err != nil {
			return "", err
		}
		if err := restoreTimestamps(ctx, q, types.TableLinks, l.ID, rec); err != nil {
			return "", err
		}
		return kindLink, nil
	}
	return "", nil
}

// restoreTimestamps copies the exported timestamps onto an imported row.
// The update triggers only watch content columns, so this does not touch
// updated_at by itself.
func restoreTimestamps(ctx context.Context, q Querier, table string, id int64, rec recordJSON) error {
	if rec.CreatedAt == "" {
		return nil
	}
	if _, err := parseTimestamp("created_at", rec.CreatedAt); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidData, err)
	}
	var updated any
	if rec.UpdatedAt != nil {
		if _, err := parseTimestamp("updated_at", *rec.UpdatedAt); err != nil {
			return fmt.Errorf("%w: %w", types.ErrInvalidData, err)
		}
		updated = *rec.UpdatedAt
	}
	stmt, err := prepare(ctx, q, `UPDATE `+table+` SET created_at = @created_at, updated_at = @updated_at WHERE id = @id`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Run(ctx, Params{"created_at": rec.CreatedAt, "updated_at": updated, "id": id})
	return err
}
