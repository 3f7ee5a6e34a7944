package api

type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type Group struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Currency       string    `json:"currency"`
	CurrencySymbol string    `json:"currencySymbol"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      int64     `json:"createdAt"`
	Members        []*Member `json:"members,omitempty"`

	// Set in listings: the caller's role and the member count.
	Role        string `json:"role,omitempty"`
	MemberCount int    `json:"memberCount,omitempty"`
}

type CreateGroupRequest struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Description    string   `json:"description,omitempty" validate:"max=500"`
	Currency       string   `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	CurrencySymbol string   `json:"currencySymbol,omitempty" validate:"max=4"`
	MemberIDs      []string `json:"memberIds,omitempty" validate:"dive,required"`
}

type GroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// UpdateGroupRequest changes only the fields that are set.
type UpdateGroupRequest struct {
	GroupID        string  `json:"groupId" validate:"required"`
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description    *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Currency       *string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	CurrencySymbol *string `json:"currencySymbol,omitempty" validate:"omitempty,max=4"`
}

type AddMemberRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
	Role    string `json:"role,omitempty" validate:"omitempty,oneof=admin member"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
}

type RemoveMemberResponse struct{}
