package services

import (
	"unicode/utf8"

	"github.com/dkovalenko/fileharbor/internal/common"
)

// maxNameLength bounds display names in code points, matching the metadata
// column the UI renders.
const maxNameLength = 255

// authorizeOwner is the single ownership predicate every file and folder
// operation goes through: the recorded owner must be the acting user.
// Violations surface as common.ErrorForbidden; the HTTP layer flattens that
// to 404 so existence of other users' resources is not leaked.
func authorizeOwner(resourceUserID, requesterID string) error {
	if resourceUserID != requesterID {
		return common.ErrorForbidden
	}
	return nil
}

// validateName enforces the shared display-name rules: non-empty, at most
// maxNameLength code points.
func validateName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return common.ErrorValidation
	}
	return nil
}
