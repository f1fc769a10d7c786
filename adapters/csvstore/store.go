// Package csvstore persists snapshots as the three per-period CSV files the
// dashboard reads, plus a small JSON manifest.
package csvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"bookingsdash/domain/bookings"
	"bookingsdash/domain/core"
	"bookingsdash/internal/errors"
	"bookingsdash/ports"
)

// ManifestFile is written next to the period files after they are in place
const ManifestFile = "manifest.json"

// Manifest records which run produced the files on disk
type Manifest struct {
	RunID        core.ID                       `json:"run_id"`
	CreatedAt    time.Time                     `json:"created_at"`
	Files        map[bookings.Period]string    `json:"files"`
	Fingerprints map[bookings.Period]core.Hash `json:"fingerprints"`
}

// Store writes and reads snapshots under a directory
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) ports.SnapshotRepository {
	return &Store{dir: dir}
}

type pendingFile struct {
	tmp   string
	final string
}

// Save encodes every period first and only then moves the files into place,
// so a failure part-way leaves the previous files untouched.
func (s *Store) Save(ctx context.Context, snapshot *bookings.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create artifact dir %s", s.dir)
	}

	manifest := Manifest{
		RunID:        snapshot.RunID,
		CreatedAt:    snapshot.CreatedAt,
		Files:        make(map[bookings.Period]string),
		Fingerprints: snapshot.Fingerprints,
	}

	var pending []pendingFile
	cleanup := func() {
		for _, p := range pending {
			os.Remove(p.tmp)
		}
	}

	for _, layout := range bookings.Layouts() {
		rows, ok := snapshot.Table(layout.Period)
		if !ok {
			cleanup()
			return errors.InvalidInput(fmt.Sprintf("snapshot has no %s table", layout.DisplayName))
		}

		var buf bytes.Buffer
		if err := bookings.EncodeCSV(&buf, rows); err != nil {
			cleanup()
			return errors.Wrapf(err, "failed to encode %s", layout.ArtifactFile)
		}
		tmp, err := s.writeTemp(layout.ArtifactFile, buf.Bytes())
		if err != nil {
			cleanup()
			return err
		}
		pending = append(pending, pendingFile{tmp: tmp, final: filepath.Join(s.dir, layout.ArtifactFile)})
		manifest.Files[layout.Period] = layout.ArtifactFile
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		cleanup()
		return errors.Wrap(err, "failed to marshal manifest")
	}
	tmp, err := s.writeTemp(ManifestFile, manifestJSON)
	if err != nil {
		cleanup()
		return err
	}
	pending = append(pending, pendingFile{tmp: tmp, final: filepath.Join(s.dir, ManifestFile)})

	for i, p := range pending {
		if err := os.Rename(p.tmp, p.final); err != nil {
			for _, rest := range pending[i:] {
				os.Remove(rest.tmp)
			}
			return errors.Wrapf(err, "failed to move %s into place", p.final)
		}
	}

	log.Printf("[CSVStore] Saved snapshot %s to %s", snapshot.RunID, s.dir)
	return nil
}

func (s *Store) writeTemp(name string, data []byte) (string, error) {
	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", errors.Wrapf(err, "failed to create temp file for %s", name)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", errors.Wrapf(err, "failed to write %s", name)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", errors.Wrapf(err, "failed to close %s", name)
	}
	return f.Name(), nil
}

// Load reads the three period files. The manifest is optional so files
// produced by other tools still load; fingerprints are recomputed either way.
func (s *Store) Load(ctx context.Context) (*bookings.Snapshot, error) {
	snapshot := &bookings.Snapshot{
		Tables:       make(map[bookings.Period][]bookings.NormalizedRow),
		Fingerprints: make(map[bookings.Period]core.Hash),
	}

	if data, err := os.ReadFile(filepath.Join(s.dir, ManifestFile)); err == nil {
		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to parse manifest")
		}
		runID, err := core.ParseID(manifest.RunID.String())
		if err != nil {
			return nil, errors.Wrap(errors.InvalidInput(err.Error()), "invalid manifest run id")
		}
		snapshot.RunID = runID
		snapshot.CreatedAt = manifest.CreatedAt
	}

	for _, layout := range bookings.Layouts() {
		path := filepath.Join(s.dir, layout.ArtifactFile)
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("table file %s", path))
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s", path)
		}
		rows, err := bookings.DecodeCSV(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}

		fp, err := bookings.Fingerprint(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fingerprint %s", path)
		}
		snapshot.Tables[layout.Period] = rows
		snapshot.Fingerprints[layout.Period] = fp
	}

	return snapshot, nil
}
