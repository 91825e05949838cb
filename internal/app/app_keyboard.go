package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
)

func (a *App) setupKeyboardShortcuts() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Handle command mode
		if a.cmdVisible {
			return event // Let command line handle it
		}

		switch event.Key() {
		case tcell.KeyCtrlC:
			a.Stop()
			return nil
		case tcell.KeyCtrlS:
			if a.GetModalName() == pageBuilder {
				a.submit(false)
			} else if !a.IsModalOpen() {
				a.save()
			}
			return nil
		}

		// Modals handle their own keys
		if a.IsModalOpen() {
			return event
		}
		return a.handleMainKey(event)
	})
}

// handleMainKey handles keys while no modal is open
func (a *App) handleMainKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyF1:
		a.showHelp()
		return nil
	case tcell.KeyF5:
		a.reload()
		return nil
	case tcell.KeyTab, tcell.KeyBacktab:
		a.toggleFocus()
		return nil
	case tcell.KeyDelete:
		if a.attributes.HasFocus() {
			a.deleteSelectedAttribute()
		} else {
			a.deleteSelectedEntity()
		}
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	switch event.Rune() {
	case 'q':
		a.quit()
	case '?':
		a.showHelp()
	case ':':
		a.showCommandLine()
	case 's':
		a.save()
	case 'r':
		a.reload()
	case 'p':
		a.showPending()
	case 'a':
		a.addField()
	case 'e':
		if a.attributes.HasFocus() {
			a.editSelectedAttribute()
		} else {
			a.editSelectedEntity()
		}
	case 'E':
		a.editSelectedEntity()
	case 'z':
		a.addComponentsToZone()
	case 'd':
		a.deleteSelectedAttribute()
	case 'D':
		a.deleteSelectedEntity()
	case 'n':
		a.createEntity(navigation.ModalContentType, schema.KindCollection)
	case 'N':
		a.createEntity(navigation.ModalContentType, schema.KindSingle)
	case 'c':
		a.createEntity(navigation.ModalComponent, "")
	default:
		return event
	}
	return nil
}

// toggleFocus moves the focus between the entity and attribute tables
func (a *App) toggleFocus() {
	if a.entities.HasFocus() {
		a.app.SetFocus(a.attributes)
		return
	}
	a.app.SetFocus(a.entities)
}
