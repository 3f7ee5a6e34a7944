// Package apiconnect wires the owwn services to connect-go without generated
// protobuf code: procedures are plain constants and messages are the structs
// of package api, carried by a JSON codec.
package apiconnect

const (
	AuthServiceName   = "owwn.v1.AuthService"
	GroupServiceName  = "owwn.v1.GroupService"
	LedgerServiceName = "owwn.v1.LedgerService"
)

// AuthService procedures.
const (
	AuthServiceRegisterProcedure        = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure           = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure  = "/" + AuthServiceName + "/GetCurrentUser"
	AuthServiceFindUserByEmailProcedure = "/" + AuthServiceName + "/FindUserByEmail"
)

// GroupService procedures.
const (
	GroupServiceCreateGroupProcedure  = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure     = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure   = "/" + GroupServiceName + "/ListGroups"
	GroupServiceUpdateGroupProcedure  = "/" + GroupServiceName + "/UpdateGroup"
	GroupServiceAddMemberProcedure    = "/" + GroupServiceName + "/AddMember"
	GroupServiceRemoveMemberProcedure = "/" + GroupServiceName + "/RemoveMember"
)

// LedgerService procedures.
const (
	LedgerServiceCreateExpenseProcedure       = "/" + LedgerServiceName + "/CreateExpense"
	LedgerServiceGetExpenseProcedure          = "/" + LedgerServiceName + "/GetExpense"
	LedgerServiceListExpensesProcedure        = "/" + LedgerServiceName + "/ListExpenses"
	LedgerServiceDeleteExpenseProcedure       = "/" + LedgerServiceName + "/DeleteExpense"
	LedgerServiceCreateSettlementProcedure    = "/" + LedgerServiceName + "/CreateSettlement"
	LedgerServiceListSettlementsProcedure     = "/" + LedgerServiceName + "/ListSettlements"
	LedgerServiceDeleteSettlementProcedure    = "/" + LedgerServiceName + "/DeleteSettlement"
	LedgerServiceGetGroupBalancesProcedure    = "/" + LedgerServiceName + "/GetGroupBalances"
	LedgerServiceGetPairwiseBalancesProcedure = "/" + LedgerServiceName + "/GetPairwiseBalances"
	LedgerServiceExportGroupProcedure         = "/" + LedgerServiceName + "/ExportGroup"
)
