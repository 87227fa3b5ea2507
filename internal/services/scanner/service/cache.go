package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/adapters/scm"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/core/catalog"
	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	str "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/strings"
)

// Cache is the prior run's intermediate for one target, read-only after load.
// Records are keyed by platform repo ID with a lowercased org/name alias for
// repositories whose ID changed (transfers, re-imports)
type Cache struct {
	byID    map[string]*catalog.Record
	byAlias map[string]*catalog.Record
}

// LoadCache reads the prior intermediate at path. A missing file yields an
// empty cache; processing-error placeholders are dropped
func LoadCache(path string) (*Cache, error) {
	c := &Cache{
		byID:    map[string]*catalog.Record{},
		byAlias: map[string]*catalog.Record{},
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, perr.Wrapf(err, perr.ErrorCodeUnavailable, "cache: read %s", path)
	}
	var records []catalog.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return c, perr.Wrapf(err, perr.ErrorCodeJSON, "cache: decode %s", path)
	}
	for i := range records {
		rec := &records[i]
		if rec.Errored() {
			continue
		}
		if rec.PlatformRepoID != "" {
			c.byID[rec.PlatformRepoID] = rec
		}
		if rec.Organization != "" && rec.Name != "" {
			c.byAlias[strings.ToLower(rec.Organization+"/"+rec.Name)] = rec
		}
	}
	return c, nil
}

// Lookup returns the cached record for a stub when its stored commit SHA
// matches sha. Records without a SHA never hit
func (c *Cache) Lookup(stub scm.Stub, sha string) (*catalog.Record, bool) {
	if sha == "" {
		return nil, false
	}
	rec := c.byID[stub.PlatformRepoID]
	if rec == nil {
		rec = c.byAlias[stub.CacheAlias()]
	}
	if rec == nil || rec.LastCommitSHA == "" || rec.LastCommitSHA != sha {
		return nil, false
	}
	return rec, true
}

// Contains reports whether the stub has any prior record, regardless of SHA.
// The planner uses it to count likely-cached repositories
func (c *Cache) Contains(stub scm.Stub) bool {
	if _, ok := c.byID[stub.PlatformRepoID]; ok {
		return true
	}
	_, ok := c.byAlias[stub.CacheAlias()]
	return ok
}

// Len returns the number of cached records keyed by ID
func (c *Cache) Len() int { return len(c.byID) }

// SanitizeTarget renders a target name safe for use in a filename
func SanitizeTarget(target string) string { return str.Sanitize(target) }

// IntermediateFile composes the per-target intermediate path under outputDir
func IntermediateFile(outputDir, platform, target string) string {
	name := "intermediate_" + platform + "_" + SanitizeTarget(target) + ".json"
	return filepath.Join(outputDir, name)
}

// WriteIntermediate writes records as an indented JSON array, staging to a
// temp file and renaming so readers never observe a partial file
func WriteIntermediate(path string, records []catalog.Record) error {
	if records == nil {
		records = []catalog.Record{}
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "intermediate: encode %s", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "intermediate: mkdir %s", dir)
		}
	}
	tmp := path + ".part"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "intermediate: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "intermediate: rename %s", path)
	}
	return nil
}
