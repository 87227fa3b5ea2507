package service

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/logger"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/services/ledger/domain"
)

var exemptionHeader = []string{"privateID", "repositoryName", "reason", "usageType", "exemptionText", "timestamp"}

// ExemptionLog is the append-only exemption side-car. Existing repository
// names are loaded up front so reruns do not duplicate rows; every append
// is flushed immediately
type ExemptionLog struct {
	path string
	log  logger.Logger

	mu   sync.Mutex
	f    *os.File
	w    *csv.Writer
	seen map[string]struct{}

	now func() time.Time
}

// OpenExemptionLog opens or creates the log and indexes the names already in it
func OpenExemptionLog(path string) (*ExemptionLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: mkdir %s", dir)
		}
	}

	l := &ExemptionLog{
		path: path,
		log:  *logger.Named("ledger"),
		seen: make(map[string]struct{}),
		now:  time.Now,
	}
	if err := l.indexExisting(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: open exemption log %s", path)
	}
	l.f = f
	l.w = csv.NewWriter(f)

	if st, err := f.Stat(); err == nil && st.Size() == 0 {
		if err := l.w.Write(exemptionHeader); err != nil {
			_ = f.Close()
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: write header %s", path)
		}
		l.w.Flush()
		if err := l.w.Error(); err != nil {
			_ = f.Close()
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: write header %s", path)
		}
	}
	return l, nil
}

func (l *ExemptionLog) indexExisting() error {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: open exemption log %s", l.path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeValidation, "ledger: malformed exemption log %s", l.path)
		}
		if len(rec) > 1 && rec[1] != exemptionHeader[1] {
			l.seen[rec[1]] = struct{}{}
		}
	}
	return nil
}

// Append logs one exemption decision; duplicates by repository name are ignored
func (l *ExemptionLog) Append(e domain.ExemptionEntry) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[e.RepositoryName]; ok {
		return false, nil
	}

	row := []string{
		e.PrivateID, e.RepositoryName, e.Reason, e.UsageType, e.ExemptionText,
		l.now().UTC().Format(time.RFC3339),
	}
	if err := l.w.Write(row); err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: append exemption %s", e.RepositoryName)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ledger: flush exemption %s", e.RepositoryName)
	}
	l.seen[e.RepositoryName] = struct{}{}
	return true, nil
}

// Close releases the file handle
func (l *ExemptionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	l.w.Flush()
	err := l.f.Close()
	l.f = nil
	return err
}
