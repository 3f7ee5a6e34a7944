// Package api defines the request and response messages of the owwn RPC
// services. Messages travel as JSON; see package apiconnect for the
// procedures and the codec.
//
// All money fields are int64 minor units of the group currency. Fields named
// *Display carry the same amount rendered for humans and are output only.
//
// Request structs carry validate tags checked by the services with
// go-playground/validator before any business logic runs.
package api
