package enums

import "fmt"

// MemberRole is the capability carried in an access token.
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleBuyer  MemberRole = "buyer"
	MemberRoleSeller MemberRole = "seller"
)

var validMemberRoles = []MemberRole{
	MemberRoleAdmin,
	MemberRoleBuyer,
	MemberRoleSeller,
}

// String implements fmt.Stringer.
func (r MemberRole) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role carries the administrative capability.
func (r MemberRole) IsAdmin() bool {
	return r == MemberRoleAdmin
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
