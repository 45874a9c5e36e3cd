package auth

import (
	"tendermarket/db"
	"tendermarket/internal/apperr"
)

// CheckOwner is the single ownership guard: it returns a Forbidden error
// with the given message unless the principal owns the resource.
func CheckOwner(principal *db.User, ownerID int, msg string) error {
	return CheckAnyOwner(principal, msg, ownerID)
}

// CheckAnyOwner permits access when the principal matches any of the
// owner ids (e.g. a bid is visible to its bidder and the tender owner).
func CheckAnyOwner(principal *db.User, msg string, ownerIDs ...int) error {
	for _, id := range ownerIDs {
		if principal.ID == id {
			return nil
		}
	}
	return apperr.Forbidden(msg)
}
