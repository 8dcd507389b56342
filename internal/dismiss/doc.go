// Package dismiss persists "user dismissed version V" decisions so a
// notification for an already-acknowledged build is not shown again after a
// restart or page reload.
//
// Records never expire on their own; a dismissal stays until the artifact
// reports a different version.
package dismiss
