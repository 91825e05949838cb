package app

import (
	"sort"
	"strings"

	"github.com/jontk/ctb/internal/export"
	"github.com/jontk/ctb/internal/navigation"
)

// ArgType identifies what kind of argument a command expects
type ArgType int

const (
	ArgTypeNone ArgType = iota
	ArgTypeUID
	ArgTypeCategory
	ArgTypeAttributeType
	ArgTypeExportFormat
)

// getCompletions returns completions for current command line text
func (a *App) getCompletions(currentText string) []string {
	// Don't trim - trailing space is significant for argument completion
	text := currentText

	// Return nil for empty input to avoid showing empty dropdown
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// If no space yet, complete command names
	if !strings.Contains(text, " ") {
		return a.getCommandCompletions(strings.TrimSpace(text))
	}

	// Otherwise, complete arguments
	return a.getArgumentCompletions(text)
}

// getCommandCompletions returns matching command names
func (a *App) getCommandCompletions(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var completions []string
	for _, name := range a.commandNames() {
		if strings.HasPrefix(name, prefix) {
			completions = append(completions, name)
		}
	}
	return completions
}

// getArgumentCompletions completes the first argument of a command
func (a *App) getArgumentCompletions(text string) []string {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return nil
	}

	// only the first argument is completed
	var argPrefix string
	switch {
	case len(parts) == 2 && !strings.HasSuffix(text, " "):
		argPrefix = parts[1]
	case len(parts) == 1 && strings.HasSuffix(text, " "):
		argPrefix = ""
	default:
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	def, ok := a.lookupCommand(cmdName)
	if !ok {
		return nil
	}

	var candidates []string
	switch def.Args {
	case ArgTypeUID:
		candidates = append(a.registry.ContentTypeUIDs(), a.registry.ComponentUIDs()...)
	case ArgTypeCategory:
		candidates = a.registry.Categories()
	case ArgTypeAttributeType:
		if a.selected != nil {
			nav := navigation.State{ForTarget: a.selected.ForTarget, TargetUID: a.selected.UID}
			for _, item := range a.pickerItems(nav) {
				candidates = append(candidates, eventType(item.event))
			}
		}
	case ArgTypeExportFormat:
		for _, f := range export.SupportedFormats() {
			candidates = append(candidates, string(f))
		}
	default:
		return nil
	}

	// Filter by prefix and format as full completions
	var completions []string
	cmdWithSpace := cmdName + " "
	for _, c := range candidates {
		if strings.HasPrefix(c, argPrefix) {
			completions = append(completions, cmdWithSpace+c)
		}
	}

	sort.Strings(completions)
	return completions
}
