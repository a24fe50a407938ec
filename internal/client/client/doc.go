// Package client contains the client-side building blocks that are not part
// of the sync engine itself.
//
// The package provides:
//  1. The Client contract for the task extraction server and its gRPC
//     implementation (GRPCClient). The access token is injected by a unary
//     interceptor and gRPC status codes are mapped to the sentinels in
//     package common.
//  2. OpenLocalStore and RunMigrations, which open the local SQLite database
//     used to persist the session token and apply the embedded goose
//     migrations.
package client
