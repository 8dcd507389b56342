// Package logx wraps zerolog behind a small structured-logging facade.
//
// The zero-value Logger is a safe no-op, so components can embed a Logger
// field without nil checks.
package logx
