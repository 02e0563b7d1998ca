// Package doctor diagnoses pm's persisted state and environment.
//
// Three kinds of problems are reported:
//
//   - [CategoryRegistry]: registered projects whose root is gone (zombies).
//     These are fixable: --fix forgets them.
//   - [CategoryConfig]: directory-local command configuration that fails
//     validation or cannot be parsed. pm falls back to the default commands
//     for such projects, so the issue is only reported.
//   - [CategoryTools]: optional binaries that are not on PATH.
package doctor
