package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/owwn/pkg/api"
)

func createGroup(t *testing.T, env *testEnv, admin string, members ...string) *api.Group {
	t.Helper()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = env.id(m)
	}
	resp, err := env.groups.CreateGroup(context.Background(), as(env, admin, &api.CreateGroupRequest{
		Name:      "Trip",
		MemberIDs: ids,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	resp, err := env.groups.CreateGroup(ctx, as(env, "alice", &api.CreateGroupRequest{
		Name:      "  Roommates ",
		MemberIDs: []string{env.id("bob"), env.id("alice"), env.id("bob"), env.id("carol")},
	}))
	require.NoError(t, err)

	group := resp.Msg.Group
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "Roommates", group.Name)
	assert.Equal(t, "USD", group.Currency)
	assert.Equal(t, "$", group.CurrencySymbol)
	assert.Equal(t, env.id("alice"), group.CreatedBy)

	require.Len(t, group.Members, 3)
	assert.Equal(t, env.id("alice"), group.Members[0].UserID)
	assert.Equal(t, "admin", group.Members[0].Role)
	assert.Equal(t, "alice", group.Members[0].DisplayName)
	assert.Equal(t, env.id("bob"), group.Members[1].UserID)
	assert.Equal(t, "member", group.Members[1].Role)
	assert.Equal(t, env.id("carol"), group.Members[2].UserID)
}

func TestCreateGroup_Currency(t *testing.T) {
	env := setupTestServer(t, nil)

	resp, err := env.groups.CreateGroup(context.Background(), as(env, "alice", &api.CreateGroupRequest{
		Name:     "Paris",
		Currency: "eur",
	}))
	require.NoError(t, err)
	assert.Equal(t, "EUR", resp.Msg.Group.Currency)
	assert.Equal(t, "€", resp.Msg.Group.CurrencySymbol)
}

func TestCreateGroup_Errors(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	_, err := env.groups.CreateGroup(ctx, as(env, "", &api.CreateGroupRequest{Name: "Trip"}))
	requireCode(t, err, connect.CodeUnauthenticated)

	_, err = env.groups.CreateGroup(ctx, as(env, "alice", &api.CreateGroupRequest{}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(ctx, as(env, "alice", &api.CreateGroupRequest{
		Name:      "Trip",
		MemberIDs: []string{"no-such-user"},
	}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestGetGroup_Access(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()
	group := createGroup(t, env, "alice", "bob")

	resp, err := env.groups.GetGroup(ctx, as(env, "bob", &api.GetGroupRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Group.Members, 2)

	_, err = env.groups.GetGroup(ctx, as(env, "dave", &api.GetGroupRequest{GroupID: group.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetGroup(ctx, as(env, "alice", &api.GetGroupRequest{GroupID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestListGroups(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()
	createGroup(t, env, "alice", "bob", "carol")
	createGroup(t, env, "bob")

	resp, err := env.groups.ListGroups(ctx, as(env, "bob", &api.ListGroupsRequest{}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Groups, 2)

	roles := map[string]string{}
	counts := map[string]int{}
	for _, g := range resp.Msg.Groups {
		roles[g.CreatedBy] = g.Role
		counts[g.CreatedBy] = g.MemberCount
	}
	assert.Equal(t, "member", roles[env.id("alice")])
	assert.Equal(t, 3, counts[env.id("alice")])
	assert.Equal(t, "admin", roles[env.id("bob")])
	assert.Equal(t, 1, counts[env.id("bob")])

	resp, err = env.groups.ListGroups(ctx, as(env, "dave", &api.ListGroupsRequest{}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Groups)
}

func TestUpdateGroup(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()
	group := createGroup(t, env, "alice", "bob")

	name := "Lisbon"
	_, err := env.groups.UpdateGroup(ctx, as(env, "bob", &api.UpdateGroupRequest{GroupID: group.ID, Name: &name}))
	requireCode(t, err, connect.CodePermissionDenied)

	currency := "gbp"
	resp, err := env.groups.UpdateGroup(ctx, as(env, "alice", &api.UpdateGroupRequest{
		GroupID:  group.ID,
		Name:     &name,
		Currency: &currency,
	}))
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", resp.Msg.Group.Name)
	assert.Equal(t, "GBP", resp.Msg.Group.Currency)
	assert.Equal(t, "£", resp.Msg.Group.CurrencySymbol)
}

func TestUpdateGroup_CurrencyLockedByLedger(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()
	group := createGroup(t, env, "alice", "bob")

	_, err := env.ledger.CreateSettlement(ctx, as(env, "alice", &api.CreateSettlementRequest{
		GroupID:    group.ID,
		FromUserID: env.id("bob"),
		ToUserID:   env.id("alice"),
		Amount:     500,
	}))
	require.NoError(t, err)

	currency := "EUR"
	_, err = env.groups.UpdateGroup(ctx, as(env, "alice", &api.UpdateGroupRequest{GroupID: group.ID, Currency: &currency}))
	requireCode(t, err, connect.CodeFailedPrecondition)

	// Restating the current currency is not a change.
	same := "usd"
	_, err = env.groups.UpdateGroup(ctx, as(env, "alice", &api.UpdateGroupRequest{GroupID: group.ID, Currency: &same}))
	require.NoError(t, err)
}

func TestAddMember(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()
	group := createGroup(t, env, "alice", "bob")

	_, err := env.groups.AddMember(ctx, as(env, "bob", &api.AddMemberRequest{GroupID: group.ID, UserID: env.id("carol")}))
	requireCode(t, err, connect.CodePermissionDenied)

	resp, err := env.groups.AddMember(ctx, as(env, "alice", &api.AddMemberRequest{GroupID: group.ID, UserID: env.id("carol")}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Group.Members, 3)
	assert.Equal(t, env.id("carol"), resp.Msg.Group.Members[2].UserID)
	assert.Equal(t, "member", resp.Msg.Group.Members[2].Role)

	_, err = env.groups.AddMember(ctx, as(env, "alice", &api.AddMemberRequest{GroupID: group.ID, UserID: env.id("carol")}))
	requireCode(t, err, connect.CodeAlreadyExists)

	_, err = env.groups.AddMember(ctx, as(env, "alice", &api.AddMemberRequest{GroupID: group.ID, UserID: "ghost"}))
	requireCode(t, err, connect.CodeNotFound)

	resp, err = env.groups.AddMember(ctx, as(env, "alice", &api.AddMemberRequest{GroupID: group.ID, UserID: env.id("dave"), Role: "admin"}))
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Msg.Group.Members[3].Role)
}

func TestRemoveMember(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()
	group := createGroup(t, env, "alice", "bob", "carol")

	_, err := env.groups.RemoveMember(ctx, as(env, "bob", &api.RemoveMemberRequest{GroupID: group.ID, UserID: env.id("carol")}))
	requireCode(t, err, connect.CodePermissionDenied)

	// Members may leave on their own.
	_, err = env.groups.RemoveMember(ctx, as(env, "bob", &api.RemoveMemberRequest{GroupID: group.ID, UserID: env.id("bob")}))
	require.NoError(t, err)

	_, err = env.groups.RemoveMember(ctx, as(env, "alice", &api.RemoveMemberRequest{GroupID: group.ID, UserID: env.id("carol")}))
	require.NoError(t, err)

	resp, err := env.groups.GetGroup(ctx, as(env, "alice", &api.GetGroupRequest{GroupID: group.ID}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Group.Members, 1)

	_, err = env.groups.RemoveMember(ctx, as(env, "alice", &api.RemoveMemberRequest{GroupID: group.ID, UserID: env.id("dave")}))
	requireCode(t, err, connect.CodeNotFound)
}
