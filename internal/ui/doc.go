// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI drives one playlist conversion end to end:
//  1. [ConvertView] : Monitor search and classification progress
//  2. [ReviewListView] : Browse titles waiting on a decision
//  3. [CandidateView] : Pick a ranked match, skip, or reject a title
//  4. [ManualSearchView] : Free-text search for titles with no usable match
//  5. [ExportView] : Confirm and monitor playlist creation
//  6. [ResultView] : Display the final conversion summary
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ConversionEngine,
// providing non-blocking status reporting while titles are searched.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, a/s/x/m, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
