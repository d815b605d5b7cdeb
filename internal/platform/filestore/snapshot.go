package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck-api/internal/domain"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

// fileVersion is the snapshot format version written by this build. Loading
// rejects any other version; migration of future versions is handled
// elsewhere, never by silently discarding data.
const fileVersion = 1

// backupPrefix and backupExt form the timestamped backup file names, e.g.
// flashdeck-20260829-153012.json. The second-granular timestamp is enough
// for human-driven usage; rapid automated writes within the same second
// overwrite the same backup, a known limitation.
const (
	backupPrefix = "flashdeck-"
	backupExt    = ".json"
	backupStamp  = "20060102-150405"
)

// fileImage is the on-disk shape of a full snapshot. Timestamps serialize
// as RFC 3339 and grades as their integer ordinals, both stable contracts.
type fileImage struct {
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Decks     []domain.Deck   `json:"decks"`
	Cards     []domain.Card   `json:"cards"`
	Reviews   []domain.Review `json:"reviews"`
}

// state is the in-memory index the store serves reads from. It is the
// authoritative copy between snapshot writes.
type state struct {
	createdAt time.Time
	updatedAt time.Time
	decks     map[uuid.UUID]domain.Deck
	cards     map[uuid.UUID]domain.Card
	reviews   map[uuid.UUID][]domain.Review
}

func newEmptyState(now time.Time) state {
	return state{
		createdAt: now,
		updatedAt: now,
		decks:     make(map[uuid.UUID]domain.Deck),
		cards:     make(map[uuid.UUID]domain.Card),
		reviews:   make(map[uuid.UUID][]domain.Review),
	}
}

// image flattens the index into the serializable snapshot document.
func (s *state) image() fileImage {
	img := fileImage{
		Version:   fileVersion,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
		Decks:     make([]domain.Deck, 0, len(s.decks)),
		Cards:     make([]domain.Card, 0, len(s.cards)),
		Reviews:   []domain.Review{},
	}
	for _, d := range s.decks {
		img.Decks = append(img.Decks, d)
	}
	for _, c := range s.cards {
		img.Cards = append(img.Cards, c)
	}
	for _, rs := range s.reviews {
		img.Reviews = append(img.Reviews, rs...)
	}
	return img
}

// stateFromImage rebuilds the index from a parsed snapshot document.
func stateFromImage(img fileImage) state {
	st := state{
		createdAt: img.CreatedAt,
		updatedAt: img.UpdatedAt,
		decks:     make(map[uuid.UUID]domain.Deck, len(img.Decks)),
		cards:     make(map[uuid.UUID]domain.Card, len(img.Cards)),
		reviews:   make(map[uuid.UUID][]domain.Review),
	}
	for _, d := range img.Decks {
		st.decks[d.ID] = d
	}
	for _, c := range img.Cards {
		st.cards[c.ID] = c
	}
	for _, r := range img.Reviews {
		st.reviews[r.CardID] = append(st.reviews[r.CardID], r)
	}
	return st
}

// loadImage reads and parses the primary snapshot file. A parse failure is
// fatal for opening the store: a corrupt file must surface as an error, not
// be reinitialized over.
func loadImage(path string) (fileImage, error) {
	var img fileImage

	data, err := os.ReadFile(path)
	if err != nil {
		return img, fmt.Errorf("%w: reading snapshot %s: %v", store.ErrStorage, path, err)
	}

	if err := json.Unmarshal(data, &img); err != nil {
		return img, fmt.Errorf("%w: snapshot %s is not parseable: %v", store.ErrInvalid, path, err)
	}

	if img.Version != fileVersion {
		return img, fmt.Errorf("%w: snapshot %s has unsupported version %d", store.ErrInvalid, path, img.Version)
	}

	return img, nil
}

// writeSnapshot persists one full snapshot durably: atomic replace of the
// primary file, an independent timestamped backup, then rotation. Callers
// must serialize invocations; two interleaved writers on the same paths are
// not supported.
func writeSnapshot(path, backupsDir string, maxBackups int, img fileImage) error {
	data, err := json.MarshalIndent(img, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: serializing snapshot: %v", store.ErrStorage, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating data directory: %v", store.ErrStorage, err)
	}
	if err := os.MkdirAll(backupsDir, 0o755); err != nil {
		return fmt.Errorf("%w: creating backups directory: %v", store.ErrStorage, err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("%w: writing snapshot: %v", store.ErrStorage, err)
	}

	backupName := backupPrefix + time.Now().Format(backupStamp) + backupExt
	if err := writeFileAtomic(filepath.Join(backupsDir, backupName), data); err != nil {
		return fmt.Errorf("%w: writing backup: %v", store.ErrStorage, err)
	}

	if err := rotateBackups(backupsDir, maxBackups); err != nil {
		return fmt.Errorf("%w: rotating backups: %v", store.ErrStorage, err)
	}

	return nil
}

// writeFileAtomic writes data to path such that a crash at any point leaves
// either the previous file or the complete new one, never a partial blend.
// The temporary file lives in the target's directory so the final rename
// stays on one filesystem and is atomic.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Any failure from here on removes the temp file; the target is still
	// untouched.
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}

// rotateBackups deletes the oldest backup files beyond the retention count.
// Age is judged by file modification time, ascending.
func rotateBackups(dir string, keep int) error {
	if keep < 1 {
		keep = 1
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type backup struct {
		path    string
		modTime time.Time
	}
	var backups []backup
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), backupExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{
			path:    filepath.Join(dir, e.Name()),
			modTime: info.ModTime(),
		})
	}

	if len(backups) <= keep {
		return nil
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].modTime.Before(backups[j].modTime)
	})

	for _, b := range backups[:len(backups)-keep] {
		if err := os.Remove(b.path); err != nil {
			return err
		}
	}

	return nil
}
