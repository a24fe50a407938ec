// Package common contains constants and sentinel errors shared by the client
// engine and the extraction server. Match errors with errors.Is.
package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"

// Change feed channel names, one per collection.
const (
	NotesChannel      = "notes_changes"
	TasksChannel      = "tasks_changes"
	CategoriesChannel = "categories_changes"
	ProfilesChannel   = "profiles_changes"
)
