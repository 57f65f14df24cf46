package fields

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// Role is a closed set of user roles. The zero value is RoleUser.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleAdmin
)

const (
	roleUserName      = "user"
	roleModeratorName = "moderator"
	roleAdminName     = "admin"
)

func ParseRole(s string) (Role, error) {
	switch s {
	case roleUserName:
		return RoleUser, nil
	case roleModeratorName:
		return RoleModerator, nil
	case roleAdminName:
		return RoleAdmin, nil
	}
	return RoleUser, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return roleUserName
	case RoleModerator:
		return roleModeratorName
	case RoleAdmin:
		return roleAdminName
	}
	return roleUserName
}

func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(r.String())), nil
}

func (r *Role) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Scan and Value let pgx map the role to its text column.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseRole(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case []byte:
		return r.Scan(string(v))
	}
	return fmt.Errorf("cannot scan %T into Role", src)
}

func (r Role) Value() (driver.Value, error) {
	return r.String(), nil
}
