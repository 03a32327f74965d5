// Package store provides layered, workspace-aware access to raw settings.
//
// A Store merges three layers per scope: built-in defaults, the user
// settings file (TOML), and the scope's workspace settings file (JSON).
// Higher layers win key by key. Scopes are keyed by workspace folder
// path; the empty scope sees only defaults and user settings.
//
// The store never fails reads. A missing or unparseable file contributes
// nothing; the last successfully loaded data for that layer stays in
// effect. Changes, whether from Update or from watched files, are fanned
// out as notify.ChangeTokens.
package store
