package app

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/jontk/ctb/internal/export"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
)

// showCommandLine shows the command input field
func (a *App) showCommandLine() {
	a.cmdVisible = true
	a.historyPos = len(a.history())
	a.cmdLine.SetText("")
	a.mainLayout.ResizeItem(a.cmdLine, 1, 0)
	a.app.SetFocus(a.cmdLine)
}

// hideCommandLine hides the command input field
func (a *App) hideCommandLine() {
	a.cmdVisible = false
	a.mainLayout.ResizeItem(a.cmdLine, 0, 0)
	if !a.IsModalOpen() {
		a.app.SetFocus(a.entities)
	}
}

// onCommandDone handles command line completion
func (a *App) onCommandDone(key tcell.Key) {
	command := a.cmdLine.GetText()
	a.hideCommandLine()

	if key != tcell.KeyEnter || strings.TrimSpace(command) == "" {
		return
	}
	a.executeCommand(command)
}

// executeCommand parses and runs a command line
func (a *App) executeCommand(command string) {
	name, args, err := ParseCommand(command)
	if err != nil {
		a.statusBar.Error(err.Error())
		return
	}
	if a.prefs != nil {
		a.prefs.AddHistory(strings.TrimSpace(command))
	}
	def, ok := a.lookupCommand(name)
	if !ok {
		a.statusBar.Error(fmt.Sprintf("Unknown command: %s", name))
		return
	}
	if err := def.CheckArgs(args); err != nil {
		a.statusBar.Error(err.Error())
		return
	}

	res := def.Handler(args)
	switch {
	case res.Error != nil:
		a.statusBar.Error(res.Error.Error())
	case res.Message != "":
		a.statusBar.Success(res.Message)
	}
}

func (a *App) history() []string {
	if a.prefs == nil {
		return nil
	}
	return a.prefs.GetHistory()
}

// historyKey browses the command history with the arrow keys while the
// line is empty or shows a history entry
func (a *App) historyKey(event *tcell.EventKey) *tcell.EventKey {
	history := a.history()
	text := a.cmdLine.GetText()
	browsing := text == "" || (a.historyPos < len(history) && text == history[a.historyPos])
	if !browsing {
		return event
	}

	switch event.Key() {
	case tcell.KeyUp:
		if a.historyPos > 0 {
			a.historyPos--
		}
	case tcell.KeyDown:
		if a.historyPos < len(history) {
			a.historyPos++
		}
	default:
		return event
	}
	if a.historyPos < len(history) {
		a.cmdLine.SetText(history[a.historyPos])
	} else {
		a.cmdLine.SetText("")
	}
	return nil
}

func (a *App) lookupCommand(name string) (CommandDef, bool) {
	registry := a.commandRegistry()
	if def, ok := registry[name]; ok {
		return def, true
	}
	for _, def := range registry {
		for _, alias := range def.Aliases {
			if alias == name {
				return def, true
			}
		}
	}
	return CommandDef{}, false
}

// commandRegistry returns the commands available in command mode
func (a *App) commandRegistry() map[string]CommandDef {
	defs := []CommandDef{
		{Name: "quit", Aliases: []string{"q"}, Description: "Quit, asking about unsaved changes", Usage: "quit", MaxArgs: 0,
			Handler: func([]string) CommandResult { a.quit(); return CommandResult{Success: true} }},
		{Name: "quit!", Aliases: []string{"q!"}, Description: "Quit without saving", Usage: "quit!", MaxArgs: 0,
			Handler: func([]string) CommandResult { a.Stop(); return CommandResult{Success: true} }},
		{Name: "save", Aliases: []string{"w"}, Description: "Save the schema file", Usage: "save", MaxArgs: 0,
			Handler: func([]string) CommandResult { a.save(); return CommandResult{Success: true} }},
		{Name: "wq", Description: "Save and quit", Usage: "wq", MaxArgs: 0,
			Handler: func([]string) CommandResult {
				a.save()
				if a.registry.HasPendingChanges() {
					return CommandResult{Error: fmt.Errorf("not quitting, the schema was not saved")}
				}
				a.Stop()
				return CommandResult{Success: true}
			}},
		{Name: "reload", Aliases: []string{"r"}, Description: "Reload the schema file", Usage: "reload", MaxArgs: 0,
			Handler: func([]string) CommandResult { a.reload(); return CommandResult{Success: true} }},
		{Name: "pending", Description: "Show unsaved changes", Usage: "pending", MaxArgs: 0,
			Handler: func([]string) CommandResult { a.showPending(); return CommandResult{Success: true} }},
		{Name: "help", Aliases: []string{"h"}, Description: "Show help", Usage: "help", MaxArgs: 0,
			Handler: func([]string) CommandResult { a.showHelp(); return CommandResult{Success: true} }},
		{Name: "collection", Aliases: []string{"ct"}, Description: "Create a collection type",
			Usage: "collection <display name>", MinArgs: 1, MaxArgs: -1,
			Handler: func(args []string) CommandResult { return a.cmdNewContentType(schema.KindCollection, args) }},
		{Name: "single", Aliases: []string{"st"}, Description: "Create a single type",
			Usage: "single <display name>", MinArgs: 1, MaxArgs: -1,
			Handler: func(args []string) CommandResult { return a.cmdNewContentType(schema.KindSingle, args) }},
		{Name: "component", Aliases: []string{"comp"}, Description: "Create a component",
			Usage: "component <category> <display name>", MinArgs: 2, MaxArgs: -1, Args: ArgTypeCategory,
			Handler: a.cmdNewComponent},
		{Name: "goto", Aliases: []string{"g"}, Description: "Select a content type or component",
			Usage: "goto <uid>", MinArgs: 1, MaxArgs: 1, Args: ArgTypeUID,
			Handler: a.cmdGoto},
		{Name: "add", Description: "Add a field of a type to the selected entity",
			Usage: "add <type>", MinArgs: 1, MaxArgs: 1, Args: ArgTypeAttributeType,
			Handler: a.cmdAdd},
		{Name: "export", Description: "Export the attributes table next to the schema file, or to path",
			Usage: "export <txt|json|csv|md|html> [path]", MinArgs: 1, MaxArgs: 2, Args: ArgTypeExportFormat,
			Handler: a.cmdExport},
		{Name: "delete", Description: "Delete a content type or component",
			Usage: "delete <uid>", MinArgs: 1, MaxArgs: 1, Args: ArgTypeUID,
			Handler: a.cmdDelete},
	}

	registry := make(map[string]CommandDef, len(defs))
	for _, d := range defs {
		registry[d.Name] = d
	}
	return registry
}

// cmdNewContentType opens the content type form with the names filled in
func (a *App) cmdNewContentType(kind schema.Kind, args []string) CommandResult {
	name := strings.Join(args, " ")
	a.createEntity(navigation.ModalContentType, kind)
	if !a.builder.Nav().IsOpen {
		return CommandResult{Error: fmt.Errorf("could not open the content type form")}
	}
	singular := schema.Slugify(name)
	a.builder.HandleChange("displayName", name)
	a.builder.HandleChange("singularName", singular)
	a.builder.HandleChange("pluralName", singular+"s")
	a.renderBuilder()
	return CommandResult{Success: true}
}

// cmdNewComponent opens the component form with category and name filled in
func (a *App) cmdNewComponent(args []string) CommandResult {
	a.createEntity(navigation.ModalComponent, "")
	if !a.builder.Nav().IsOpen {
		return CommandResult{Error: fmt.Errorf("could not open the component form")}
	}
	a.builder.HandleChange("category", args[0])
	a.builder.HandleChange("displayName", strings.Join(args[1:], " "))
	a.renderBuilder()
	return CommandResult{Success: true}
}

func (a *App) cmdGoto(args []string) CommandResult {
	ref, err := a.resolve(args[0])
	if err != nil {
		return CommandResult{Error: err}
	}
	a.selectEntity(ref.ForTarget, ref.UID)
	return CommandResult{Success: true}
}

// cmdAdd opens the picker and selects a type, skipping the picker step
func (a *App) cmdAdd(args []string) CommandResult {
	if a.selected == nil {
		return CommandResult{Error: fmt.Errorf("select a content type or component first")}
	}
	if _, err := a.builder.Navigate(navigation.OpenChooseAttribute{ForTarget: a.selected.ForTarget, TargetUID: a.selected.UID}); err != nil {
		return CommandResult{Error: err}
	}
	for _, item := range a.pickerItems(a.builder.Nav()) {
		if strings.EqualFold(item.label, args[0]) || eventType(item.event) == args[0] {
			a.dispatch(item.event)
			return CommandResult{Success: true}
		}
	}
	_ = a.builder.Close(true)
	return CommandResult{Error: fmt.Errorf("%s does not accept fields of type %q", a.selected.UID, args[0])}
}

func (a *App) cmdDelete(args []string) CommandResult {
	ref, err := a.resolve(args[0])
	if err != nil {
		return CommandResult{Error: err}
	}
	a.selectEntity(ref.ForTarget, ref.UID)
	a.deleteSelectedEntity()
	return CommandResult{Success: true}
}

func (a *App) cmdExport(args []string) CommandResult {
	format, err := export.ParseFormat(args[0])
	if err != nil {
		return CommandResult{Error: err}
	}
	var path string
	if len(args) > 1 {
		path = args[1]
	}

	td := export.AttributesTableData(a.registry.Snapshot())
	result, err := export.NewTableExporter(filepath.Dir(a.store.Path())).Export(td, format, path)
	if err != nil {
		a.logger.Error().Err(err).Str("format", string(format)).Msg("Export failed")
		return CommandResult{Error: err}
	}
	a.logger.Info().Str("path", result.FilePath).Int64("size", result.Size).Msg("content model exported")
	return CommandResult{Success: true, Message: fmt.Sprintf("Exported %d attributes to %s", len(td.Rows), result.FilePath)}
}

// resolve finds whether uid is a content type or a component
func (a *App) resolve(uid string) (entityRef, error) {
	switch {
	case a.registry.Exists(schema.ModelContentType, uid):
		return entityRef{ForTarget: schema.ModelContentType, UID: uid}, nil
	case a.registry.Exists(schema.ModelComponent, uid):
		return entityRef{ForTarget: schema.ModelComponent, UID: uid}, nil
	}
	return entityRef{}, fmt.Errorf("no content type or component with uid %q", uid)
}

// eventType returns the attribute type or custom field uid a picker event selects
func eventType(ev any) string {
	switch e := ev.(type) {
	case navigation.SelectField:
		return e.AttributeType
	case navigation.SelectCustomField:
		return e.CustomFieldUID
	}
	return ""
}

// commandNames returns every command name and alias, sorted
func (a *App) commandNames() []string {
	var names []string
	for name, def := range a.commandRegistry() {
		names = append(names, name)
		names = append(names, def.Aliases...)
	}
	sort.Strings(names)
	return names
}
