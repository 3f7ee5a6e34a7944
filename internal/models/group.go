package models

// Role is a member's permission level inside a group.
// Roles never affect balances, only who may mutate the ledger.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Default currency for groups created without one.
const (
	DefaultCurrency       = "USD"
	DefaultCurrencySymbol = "$"
)

// Group is a set of people sharing expenses in a single currency.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Trip to Paris").
	Name string

	// Description is optional free text.
	Description string

	// Currency is the ISO code every amount in the group is expressed in.
	Currency string

	// CurrencySymbol is used for display only.
	CurrencySymbol string

	// CreatedBy is the user who created the group. They start as admin.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member links a user to a group with a role.
type Member struct {
	GroupID string
	UserID  string
	Role    Role

	// DisplayName is populated via JOIN on users.
	DisplayName string
}

// IsAdmin reports whether the member may manage the group.
func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

// MemberSet returns the user IDs of members as a lookup set.
func MemberSet(members []*Member) map[string]bool {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m.UserID] = true
	}
	return set
}

// MemberIDs returns the user IDs of members in the given order.
func MemberIDs(members []*Member) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids
}
