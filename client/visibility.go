package client

import (
	"am4m_server/apperrors"
	"am4m_server/models"
)

// Visible reports whether a profile with targetGender may be shown to a
// viewer with viewerGender: both must be set and they must differ. The
// predicate is symmetric and ignores the target's isPublic flag; gender
// gating overrides discoverability in both the search listing and direct
// profile access.
func Visible(viewerGender, targetGender string) bool {
	return models.OppositeGenders(viewerGender, targetGender)
}

// CheckView gates direct profile-by-id access. The caller renders the
// returned error as a placeholder instead of the profile content:
// ErrGenderNotSet prompts the viewer to set their own gender first,
// ErrProfileNotVisible is the same-gender (or unset target) denial.
func CheckView(viewerGender, targetGender string) error {
	if models.NormalizeGender(viewerGender) == models.GenderUnset {
		return apperrors.ErrGenderNotSet
	}
	if !Visible(viewerGender, targetGender) {
		return apperrors.ErrProfileNotVisible
	}
	return nil
}

// SearchTarget returns the gender value the browse query filters on for
// the given viewer. A viewer with no gender set gets no target and must
// be prompted rather than shown an unfiltered list.
func SearchTarget(viewerGender string) (string, error) {
	switch models.NormalizeGender(viewerGender) {
	case models.GenderMale:
		return models.GenderFemale, nil
	case models.GenderFemale:
		return models.GenderMale, nil
	default:
		return "", apperrors.ErrGenderNotSet
	}
}
