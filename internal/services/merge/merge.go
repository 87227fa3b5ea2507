// Package merge unions the per-target intermediate files into the final
// agency catalog (code.json), backing up the prior catalog and the ledger
// side-cars first
package merge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/catalog"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
	tim "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/time"
)

const backupStamp = "20060102-150405"

// Result summarizes one merge run
type Result struct {
	Intermediates int
	Projects      int
	Errored       int
	Output        string
	CatalogBackup string
}

// Merger performs the merge phase. One instance per run
type Merger struct {
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// New builds a Merger over the given options
func New(opts Options) *Merger {
	return &Merger{
		opts: opts,
		log:  *logger.Named("merge"),
		now:  time.Now,
	}
}

// Run globs the intermediates, unions their projects, stamps
// date.metadataLastUpdated on every non-errored project, strips the internal
// commit SHA, and writes the catalog envelope atomically. The prior catalog
// is renamed aside; the side-cars are copied aside
func (m *Merger) Run() (Result, error) {
	out := Result{Output: filepath.Join(m.opts.OutputDir, m.opts.CatalogFile)}

	pattern := filepath.Join(m.opts.OutputDir, "intermediate_*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "merge: bad glob %s", pattern)
	}
	if len(paths) == 0 {
		return out, perr.NotFoundf("merge: no intermediate files under %s", m.opts.OutputDir)
	}
	out.Intermediates = len(paths)

	stamp := tim.ISO(m.now())
	var projects []catalog.Record
	for _, p := range paths {
		records, err := readIntermediate(p)
		if err != nil {
			// a skipped intermediate would silently drop a whole target
			return out, err
		}
		for i := range records {
			rec := &records[i]
			rec.LastCommitSHA = ""
			if rec.Errored() {
				out.Errored++
			} else {
				if rec.Date == nil {
					rec.Date = &catalog.Dates{}
				}
				rec.Date.MetadataLastUpdated = stamp
			}
		}
		m.log.Info().Str("file", filepath.Base(p)).Int("projects", len(records)).Msg("intermediate merged")
		projects = append(projects, records...)
	}
	out.Projects = len(projects)

	backup, err := m.backupCatalog(out.Output)
	if err != nil {
		return out, err
	}
	out.CatalogBackup = backup
	if err := m.backupSideCars(); err != nil {
		return out, err
	}

	if err := writeCatalog(out.Output, catalog.NewCatalog(m.opts.Agency, projects)); err != nil {
		return out, err
	}
	m.log.Info().
		Int("intermediates", out.Intermediates).
		Int("projects", out.Projects).
		Int("errored", out.Errored).
		Str("output", out.Output).
		Msg("catalog written")
	return out, nil
}

// backupCatalog renames any prior catalog aside and returns the backup path
func (m *Merger) backupCatalog(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "merge: stat %s", path)
	}
	backup := path + "." + m.now().UTC().Format(backupStamp) + ".bak"
	if err := os.Rename(path, backup); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "merge: backup %s", path)
	}
	m.log.Info().Str("backup", backup).Msg("prior catalog moved aside")
	return backup, nil
}

// backupSideCars copies the mapping and exemption CSVs aside. Copy, not
// rename: the next scan still appends to the originals
func (m *Merger) backupSideCars() error {
	ts := m.now().UTC().Format(backupStamp)
	for _, name := range []string{m.opts.MappingFile, m.opts.ExemptionFile} {
		if name == "" {
			continue
		}
		src := filepath.Join(m.opts.OutputDir, name)
		if _, err := os.Stat(src); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "merge: stat %s", src)
		}
		if err := copyFile(src, src+"."+ts+".bak"); err != nil {
			return err
		}
	}
	return nil
}

func readIntermediate(path string) ([]catalog.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "merge: read %s", path)
	}
	var records []catalog.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "merge: decode %s", path)
	}
	return records, nil
}

func writeCatalog(path string, c catalog.Catalog) error {
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "merge: encode catalog")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "merge: mkdir %s", dir)
		}
	}
	tmp := path + ".part"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "merge: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "merge: rename %s", path)
	}
	return nil
}

func copyFile(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "merge: read %s", src)
	}
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "merge: write %s", dst)
	}
	return nil
}
