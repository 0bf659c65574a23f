// Package ui holds the small pieces of terminal output used outside the
// dashboard: status symbols, the shared color palette, and a spinner for
// slow startup steps such as connecting to a --via host.
//
// # Color Scheme
//
// Colors are ANSI codes so they follow the user's terminal theme:
//
//	ColorSuccess   (green)  - Successful operations
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Warnings and skipped items
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timing info
//
// DisableColors switches to monochrome output for --no-color.
package ui
