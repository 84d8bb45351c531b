package library

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"velociplayer/internal/captions"
	"velociplayer/internal/logging"
	"velociplayer/internal/services"
)

// Subtitle is one imported subtitle file. The payload is fetched separately.
type Subtitle struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Digest       string    `json:"digest"`
	Charset      string    `json:"charset"`
	Size         int       `json:"size"`
	CaptionCount int       `json:"caption_count"`
	EndSeconds   float64   `json:"end_seconds"`
	ImportedAt   time.Time `json:"imported_at"`
}

const subtitleColumns = `id, name, digest, charset, length(payload), caption_count, end_seconds, imported_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubtitle(row rowScanner) (*Subtitle, error) {
	var (
		sub      Subtitle
		imported string
	)
	if err := row.Scan(&sub.ID, &sub.Name, &sub.Digest, &sub.Charset, &sub.Size, &sub.CaptionCount, &sub.EndSeconds, &imported); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, imported)
	if err != nil {
		return nil, fmt.Errorf("parse imported_at %q: %w", imported, err)
	}
	sub.ImportedAt = ts
	return &sub, nil
}

// Digest returns the hex SHA-256 of a payload.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Import decodes data and stores it under name. An identical payload already
// in the library is returned instead, with created set to false. Payloads
// that do not decode are rejected with a validation error.
func (s *Store) Import(ctx context.Context, name string, data []byte, charset string) (*Subtitle, bool, error) {
	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" {
		charset = s.charset
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, services.Wrap(services.ErrValidation, "library", "import", "subtitle name is required", nil)
	}

	track, err := captions.DecodeBytes(data, charset, s.build)
	if err != nil {
		return nil, false, services.Wrap(services.ErrValidation, "library", "import", "decode "+filepath.Base(name), err)
	}

	charset, err = captions.CanonicalCharset(charset)
	if err != nil {
		return nil, false, services.Wrap(services.ErrValidation, "library", "import", "resolve charset", err)
	}

	digest := Digest(data)
	if existing, err := s.getByDigest(ctx, digest, charset); err != nil {
		return nil, false, err
	} else if existing != nil {
		s.logger.Info("subtitle already imported",
			logging.Int64(logging.FieldSubtitleID, existing.ID),
			logging.String("name", existing.Name),
		)
		return existing, false, nil
	}

	res, err := s.execWithRetry(ctx,
		`INSERT INTO subtitles (name, digest, charset, payload, caption_count, end_seconds, imported_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name,
		digest,
		charset,
		data,
		track.RealCount(),
		track.End().Seconds(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert subtitle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}

	stats := track.Stats()
	s.logger.Info("subtitle imported",
		logging.Int64(logging.FieldSubtitleID, id),
		logging.String("name", name),
		logging.Int("captions", track.RealCount()),
		logging.Int("dropped_blocks", stats.Dropped),
	)
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// Get fetches a subtitle by id.
func (s *Store) Get(ctx context.Context, id int64) (*Subtitle, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subtitleColumns+` FROM subtitles WHERE id = ?`, id)
	sub, err := scanSubtitle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get subtitle: %w", err)
	}
	return sub, nil
}

func (s *Store) getByDigest(ctx context.Context, digest, charset string) (*Subtitle, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subtitleColumns+` FROM subtitles WHERE digest = ? AND charset = ?`, digest, charset)
	sub, err := scanSubtitle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by digest: %w", err)
	}
	return sub, nil
}

// List returns every subtitle ordered by id.
func (s *Store) List(ctx context.Context) ([]Subtitle, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+subtitleColumns+` FROM subtitles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list subtitles: %w", err)
	}
	defer rows.Close()

	var out []Subtitle
	for rows.Next() {
		sub, err := scanSubtitle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subtitle: %w", err)
		}
		out = append(out, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtitles: %w", err)
	}
	return out, nil
}

// Payload returns the stored bytes and their charset.
func (s *Store) Payload(ctx context.Context, id int64) ([]byte, string, error) {
	var (
		data    []byte
		charset string
	)
	err := s.db.QueryRowContext(ctx, `SELECT payload, charset FROM subtitles WHERE id = ?`, id).Scan(&data, &charset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", notFound("payload", id)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read payload: %w", err)
	}
	return data, charset, nil
}

// Track decodes the stored payload of a subtitle.
func (s *Store) Track(ctx context.Context, id int64) (*captions.Track, error) {
	data, charset, err := s.Payload(ctx, id)
	if err != nil {
		return nil, err
	}
	track, err := captions.DecodeBytes(data, charset, s.build)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "library", "track", fmt.Sprintf("decode subtitle %d", id), err)
	}
	return track, nil
}

// Remove deletes a subtitle.
func (s *Store) Remove(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM subtitles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subtitle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound("remove", id)
	}
	s.logger.Info("subtitle removed", logging.Int64(logging.FieldSubtitleID, id))
	return nil
}

func notFound(op string, id int64) error {
	return services.Wrap(services.ErrNotFound, "library", op, fmt.Sprintf("subtitle %d does not exist", id), nil)
}
