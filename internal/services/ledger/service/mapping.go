// Package service implements the CSV-backed ledger managers
package service

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
	str "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/strings"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/ledger/domain"
)

const dateOnly = "2006-01-02"

var mappingHeader = []string{"PrivateID", "RepositoryName", "RepositoryURL", "Organization", "ContactEmails", "DateAdded"}

// Mapping is the private-ID side-car manager. One lock guards the in-memory
// map; the file is rewritten wholesale by Save
type Mapping struct {
	path string
	log  logger.Logger

	mu   sync.Mutex
	rows map[string]*domain.MappingEntry

	now       func() time.Time
	newSuffix func() string
}

// OpenMapping loads the existing mapping file when present
func OpenMapping(path string) (*Mapping, error) {
	m := &Mapping{
		path:      path,
		log:       *logger.Named("ledger"),
		rows:      make(map[string]*domain.MappingEntry),
		now:       time.Now,
		newSuffix: randomSuffix,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mapping) load() error {
	f, err := os.Open(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: open mapping %s", m.path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(mappingHeader)
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeValidation, "ledger: malformed mapping %s", m.path)
		}
		if first {
			first = false
			if rec[0] == mappingHeader[0] {
				continue
			}
		}
		e := &domain.MappingEntry{
			PrivateID:      rec[0],
			RepositoryName: rec[1],
			RepositoryURL:  rec[2],
			Organization:   rec[3],
			ContactEmails:  splitEmails(rec[4]),
			DateAdded:      rec[5],
		}
		m.rows[e.PrivateID] = e
	}
	m.log.Info().Int("entries", len(m.rows)).Str("file", m.path).Msg("private-id mapping loaded")
	return nil
}

// Resolve returns the stable private ID for the request, creating the row
// on first sight and refreshing its details on later ones
func (m *Mapping) Resolve(req domain.ResolveRequest) (string, error) {
	if req.Platform == "" || req.RepositoryName == "" {
		return "", perr.InvalidArgf("ledger: resolve needs platform and repository name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.idFor(req)
	emails := normalizeEmails(req.ContactEmails)

	if e, ok := m.rows[id]; ok {
		e.RepositoryName = req.RepositoryName
		if req.RepositoryURL != "" {
			e.RepositoryURL = req.RepositoryURL
		}
		if req.Organization != "" {
			e.Organization = req.Organization
		}
		if len(emails) > 0 {
			e.ContactEmails = emails
		}
		return id, nil
	}

	m.rows[id] = &domain.MappingEntry{
		PrivateID:      id,
		RepositoryName: req.RepositoryName,
		RepositoryURL:  req.RepositoryURL,
		Organization:   req.Organization,
		ContactEmails:  emails,
		DateAdded:      m.now().UTC().Format(dateOnly),
	}
	return id, nil
}

// idFor prefers the deterministic platform id. Without one, an existing
// random row for the same repository name is reused so the id survives runs
func (m *Mapping) idFor(req domain.ResolveRequest) string {
	if req.PlatformRepoID != "" {
		return req.Platform + "_" + req.PlatformRepoID
	}
	prefix := req.Platform + "_random_"
	for id, e := range m.rows {
		if strings.HasPrefix(id, prefix) && e.RepositoryName == req.RepositoryName {
			return id
		}
	}
	return prefix + m.newSuffix()
}

// Save rewrites the CSV, sorted by private ID, via temp file and rename
func (m *Mapping) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: mkdir %s", dir)
		}
	}

	ids := make([]string, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tmp := m.path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: create %s", tmp)
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(mappingHeader)
	for _, id := range ids {
		if writeErr != nil {
			break
		}
		e := m.rows[id]
		writeErr = w.Write([]string{
			e.PrivateID, e.RepositoryName, e.RepositoryURL, e.Organization,
			strings.Join(e.ContactEmails, ";"), e.DateAdded,
		})
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if cerr := f.Close(); writeErr == nil {
		writeErr = cerr
	}
	if writeErr != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(writeErr, perr.ErrorCodeUnavailable, "ledger: write mapping %s", m.path)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: replace mapping %s", m.path)
	}
	m.log.Info().Int("entries", len(m.rows)).Str("file", m.path).Msg("private-id mapping saved")
	return nil
}

// Len reports the number of mapping rows
func (m *Mapping) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// normalizeEmails lowercases, dedupes, and sorts
func normalizeEmails(in []string) []string { return str.UniqueSortedLower(in) }

func splitEmails(s string) []string {
	if s == "" {
		return nil
	}
	return normalizeEmails(strings.Split(s, ";"))
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
