package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jontk/ctb/internal/schema"
)

func (a *App) showHelp() {
	helpText := `[yellow]CTB - Content-Type Builder Help[white]

[teal]Entities:[white]
  [yellow]n[white]          New collection type
  [yellow]N[white]          New single type
  [yellow]c[white]          New component
  [yellow]E[white]          Edit the selected entity's settings
  [yellow]D[white]          Delete the selected entity

[teal]Fields:[white]
  [yellow]a[white]          Add a field to the selected entity
  [yellow]e, Enter[white]   Edit the selected field
  [yellow]z[white]          Add components to the selected dynamic zone
  [yellow]d[white]          Delete the selected field

[teal]Schema:[white]
  [yellow]s, Ctrl+S[white]  Save the schema file
  [yellow]p[white]          Show unsaved changes
  [yellow]r[white]          Reload the schema file
  [yellow]Tab[white]        Switch between entities and fields
  [yellow]:[white]          Enter command mode
  [yellow]?, F1[white]      Show this help
  [yellow]q, Ctrl+C[white]  Quit application

[teal]Commands:[white]
  [yellow]:ct, :st[white]   New collection/single type by name
  [yellow]:comp[white]      New component in a category
  [yellow]:g, :add[white]   Go to an entity, add a field of a type
  [yellow]:export[white]    Export the attributes table (txt, json, csv, md, html)
  [yellow]:w, :wq, :q![white] Save, save and quit, quit without saving

[teal]Forms:[white]
  [yellow]Tab[white]        Next input
  [yellow]Ctrl+S[white]     Finish
  [yellow]ESC[white]        Close the form

Press [yellow]ESC[white] to close this help.`

	modal := tview.NewTextView().
		SetDynamicColors(true).
		SetText(helpText).
		SetTextAlign(tview.AlignLeft)

	modal.SetBorder(true).
		SetTitle(" Help ").
		SetTitleAlign(tview.AlignCenter)

	modal.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			a.HideModal(pageHelp)
			return nil
		}
		return event
	})

	a.ShowModal(pageHelp, createCenteredModal(modal, 72, 42))
}

// confirm asks a yes/no question. onCancel may be nil.
func (a *App) confirm(title, text, action string, onConfirm, onCancel func()) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{action, "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			a.HideModal(pageConfirm)
			if label == action {
				onConfirm()
				return
			}
			if onCancel != nil {
				onCancel()
			}
		})
	modal.SetTitle(" " + title + " ")
	a.ShowModal(pageConfirm, modal)
}

// showPending lists the entities that differ from the saved file
func (a *App) showPending() {
	pending := a.registry.Pending()
	if pending.Empty() {
		a.statusBar.Info("No unsaved changes")
		return
	}

	var b strings.Builder
	section := func(title, color string, uids []string) {
		if len(uids) == 0 {
			return
		}
		fmt.Fprintf(&b, "[teal]%s:[white]\n", title)
		for _, uid := range uids {
			fmt.Fprintf(&b, "  [%s]%s[white]\n", color, tview.Escape(uid))
		}
		b.WriteString("\n")
	}
	section("Added", "green", pending.Added)
	section("Changed", "yellow", pending.Changed)
	section("Deleted", "red", pending.Deleted)
	b.WriteString("Press [yellow]s[white] to save, [yellow]ESC[white] to close.")

	view := tview.NewTextView().SetDynamicColors(true).SetText(b.String())
	view.SetBorder(true).SetTitle(fmt.Sprintf(" Unsaved changes (%d) ", pending.Count()))
	view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEsc:
			a.HideModal(pagePending)
			return nil
		case event.Key() == tcell.KeyRune && event.Rune() == 's':
			a.HideModal(pagePending)
			a.save()
			return nil
		}
		return event
	})
	a.ShowModal(pagePending, createCenteredModal(view, 60, min(pending.Count()+10, 30)))
}

// save writes the registry to the schema file
func (a *App) save() {
	if !a.registry.HasPendingChanges() {
		a.statusBar.Info("Nothing to save")
		return
	}
	pending := a.registry.Pending()
	if err := schema.SaveFrom(a.ctx, a.store, a.registry); err != nil {
		a.logger.Error().Err(err).Str("schema", a.store.Path()).Msg("Failed to save schema")
		a.statusBar.Error(fmt.Sprintf("Failed to save schema: %v", err))
		return
	}
	a.logger.Info().
		Strs("added", pending.Added).
		Strs("changed", pending.Changed).
		Strs("deleted", pending.Deleted).
		Str("schema", a.store.Path()).
		Msg("schema saved")
	a.refresh()
	a.statusBar.Success(fmt.Sprintf("Saved %d change(s) to %s", pending.Count(), a.store.Path()))
}

// reload replaces the registry with the schema file, asking first when
// unsaved changes would be lost
func (a *App) reload() {
	load := func() {
		if err := schema.LoadInto(a.ctx, a.store, a.registry); err != nil {
			a.statusBar.Error(fmt.Sprintf("Failed to reload schema: %v", err))
			return
		}
		a.refresh()
		a.statusBar.Success("Schema reloaded")
	}
	if a.registry.HasPendingChanges() {
		a.confirm("Reload", "Reloading discards your unsaved changes.", "Reload", load, nil)
		return
	}
	load()
}

// quit stops the application, asking first when changes are unsaved
func (a *App) quit() {
	if !a.registry.HasPendingChanges() {
		a.Stop()
		return
	}
	modal := tview.NewModal().
		SetText(fmt.Sprintf("%d entities have unsaved changes.", a.registry.Pending().Count())).
		AddButtons([]string{"Save & quit", "Quit", "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			a.HideModal(pageConfirm)
			switch label {
			case "Save & quit":
				a.save()
				if !a.registry.HasPendingChanges() {
					a.Stop()
				}
			case "Quit":
				a.Stop()
			}
		})
	modal.SetTitle(" Quit ")
	a.ShowModal(pageConfirm, modal)
}

// deleteSelectedAttribute removes the field under the cursor after confirmation
func (a *App) deleteSelectedAttribute() {
	attr, ok := a.selectedAttribute()
	if !ok {
		return
	}
	ref := *a.selected
	text := fmt.Sprintf("Delete the field %s?", attr.Name())
	if attr.Type() == schema.TypeRelation && attr.TargetAttribute() != "" {
		text = fmt.Sprintf("Delete the field %s and %s on %s?", attr.Name(), attr.TargetAttribute(), attr.Target())
	}
	a.confirm("Delete field", text, "Delete", func() {
		if err := a.registry.DeleteAttribute(ref.ForTarget, ref.UID, attr.Name()); err != nil {
			a.statusBar.Error(err.Error())
			return
		}
		a.refresh()
		a.statusBar.Success(fmt.Sprintf("Deleted %s", attr.Name()))
	}, nil)
}

// deleteSelectedEntity removes the selected content type or component after confirmation
func (a *App) deleteSelectedEntity() {
	entity := a.selectedEntity()
	if entity == nil {
		return
	}
	ref := *a.selected
	text := fmt.Sprintf("Delete %s? Relations pointing at it are removed too.", entity.DisplayName())
	if ref.ForTarget == schema.ModelComponent {
		text = fmt.Sprintf("Delete the component %s? Every field using it is removed too.", entity.DisplayName())
	}
	a.confirm("Delete", text, "Delete", func() {
		var err error
		if ref.ForTarget == schema.ModelComponent {
			err = a.registry.DeleteComponent(ref.UID)
		} else {
			err = a.registry.DeleteContentType(ref.UID)
		}
		if err != nil {
			a.statusBar.Error(err.Error())
			return
		}
		a.selected = nil
		a.refresh()
		a.statusBar.Success(fmt.Sprintf("Deleted %s", ref.UID))
	}, nil)
}
