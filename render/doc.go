// Package render formats search results and catalog statistics for
// terminal output using lipgloss tables.
package render
