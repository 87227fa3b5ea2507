package catalog

import (
	"regexp"

	perr "github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/errors"
	"github.com/OCIO-ricky/ShareITAct-RepoScanning-sub000/internal/platform/validate"
)

var privateIDPattern = regexp.MustCompile(`^[a-z]+_[A-Za-z0-9_\-/]+$`)

// Validate checks a finalized record against the catalog contract.
// Processing-error placeholders are exempt from everything except naming
func (r *Record) Validate() error {
	if r.Errored() {
		if r.Name == "" {
			return perr.Newf(perr.ErrorCodeValidation, "errored record must carry a name")
		}
		return nil
	}

	if err := validate.Struct(r); err != nil {
		return err
	}

	u := r.UsageType()
	if u == "" {
		return perr.Newf(perr.ErrorCodeValidation, "record %q has no usage type", r.Name)
	}
	if IsExempt(u) && r.Permissions.ExemptionText == "" {
		return perr.Newf(perr.ErrorCodeValidation, "record %q is %s without exemption text", r.Name, u)
	}

	if r.IsPrivate() {
		if r.PrivateID == "" {
			return perr.Newf(perr.ErrorCodeValidation, "private record %q has no privateID", r.Name)
		}
		if !privateIDPattern.MatchString(r.PrivateID) {
			return perr.Newf(perr.ErrorCodeValidation, "record %q privateID %q is malformed", r.Name, r.PrivateID)
		}
	}

	if r.Date != nil && r.Date.Created != "" && r.Date.LastModified != "" &&
		r.Date.LastModified < r.Date.Created {
		return perr.Newf(perr.ErrorCodeValidation, "record %q lastModified precedes created", r.Name)
	}

	return nil
}
