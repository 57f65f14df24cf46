// Package authz holds the access-control predicates consulted before any
// mutating operation reaches storage. Catalog and user administration are
// role-based, review/comment mutation is ownership-based with moderator
// oversight on delete.
package authz

import (
	"reviewhub/proj/internal/domain/fields"
	"reviewhub/proj/internal/domain/models"
)

// IsAdmin reports whether the user carries admin rights. A superuser is
// always treated as an admin, whatever role the row stores.
func IsAdmin(u *models.User) bool {
	if u.IsAnonymous() {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	switch u.Role {
	case fields.RoleAdmin:
		return true
	case fields.RoleModerator, fields.RoleUser:
		return false
	}
	return false
}

func IsModerator(u *models.User) bool {
	if u.IsAnonymous() {
		return false
	}
	switch u.Role {
	case fields.RoleModerator:
		return true
	case fields.RoleAdmin, fields.RoleUser:
		return false
	}
	return false
}

// CanWriteCatalog gates create/update/delete on categories, genres and
// titles. Reads are open to everyone, so no predicate exists for them.
func CanWriteCatalog(u *models.User) bool {
	return IsAdmin(u)
}

// CanAdministerUsers gates the /users/ admin surface.
func CanAdministerUsers(u *models.User) bool {
	return IsAdmin(u)
}

// CanAccessSelfProfile is an object-level check: only the profile owner may
// touch /users/me/, regardless of role.
func CanAccessSelfProfile(u *models.User, targetUsername string) bool {
	if u.IsAnonymous() {
		return false
	}
	return u.Username == targetUsername
}

// CanCreateFeedback: any authenticated user may post reviews and comments.
func CanCreateFeedback(u *models.User) bool {
	return !u.IsAnonymous()
}

// CanUpdateFeedback: only the original author, whatever the requester's
// role. Moderators and admins get no bypass here.
func CanUpdateFeedback(u *models.User, authorID int64) bool {
	if u.IsAnonymous() {
		return false
	}
	return u.ID == authorID
}

// CanDeleteFeedback: the author or a moderator. Admin is deliberately not
// granted a bypass beyond what the moderator role covers; broadening that
// is a product decision, not a bug fix.
func CanDeleteFeedback(u *models.User, authorID int64) bool {
	if u.IsAnonymous() {
		return false
	}
	return u.ID == authorID || IsModerator(u)
}
