package app

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/jontk/ctb/internal/builder"
	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
	"github.com/jontk/ctb/internal/ui/styles"
)

const (
	formWidth  = 76
	formHeight = 26
)

// dispatch applies a navigation event and shows the resulting modal
func (a *App) dispatch(ev navigation.Event) {
	if _, err := a.builder.Navigate(ev); err != nil {
		a.statusBar.Error(fmt.Sprintf("%s: %v", navigation.EventName(ev), err))
		return
	}
	a.focusLabel = ""
	a.conditionErr = ""
	a.renderBuilder()
}

// addField opens the attribute picker for the selected entity
func (a *App) addField() {
	if a.selected == nil {
		a.statusBar.Warning("Select a content type or component first")
		return
	}
	a.dispatch(navigation.OpenChooseAttribute{ForTarget: a.selected.ForTarget, TargetUID: a.selected.UID})
}

// editSelectedAttribute opens the edit form of the attribute under the cursor
func (a *App) editSelectedAttribute() {
	attr, ok := a.selectedAttribute()
	if !ok {
		return
	}
	if uid := attr.CustomField(); uid != "" {
		a.dispatch(navigation.OpenEditCustomField{
			ForTarget: a.selected.ForTarget, TargetUID: a.selected.UID,
			AttributeName: attr.Name(), AttributeType: attr.Type(), CustomFieldUID: uid,
		})
		return
	}
	a.dispatch(navigation.OpenEditField{
		ForTarget: a.selected.ForTarget, TargetUID: a.selected.UID,
		AttributeName: attr.Name(), AttributeType: attr.Type(),
	})
}

// addComponentsToZone opens the add-components form of the dynamic zone under the cursor
func (a *App) addComponentsToZone() {
	attr, ok := a.selectedAttribute()
	if !ok || attr.Type() != schema.TypeDynamicZone {
		a.statusBar.Warning("Select a dynamic zone first")
		return
	}
	a.dispatch(navigation.OpenAddComponentsToDZ{
		ForTarget: a.selected.ForTarget, TargetUID: a.selected.UID, DynamicZoneTarget: attr.Name(),
	})
}

// editSelectedEntity opens the settings of the selected content type or component
func (a *App) editSelectedEntity() {
	entity := a.selectedEntity()
	if entity == nil {
		return
	}
	if entity.IsPluginType() {
		a.statusBar.Warning(fmt.Sprintf("%s belongs to a plugin and cannot be edited", entity.UID))
		return
	}
	modal := navigation.ModalContentType
	if a.selected.ForTarget == schema.ModelComponent {
		modal = navigation.ModalComponent
	}
	a.dispatch(navigation.OpenEditSchema{ModalType: modal, TargetUID: entity.UID, Kind: entity.Kind})
}

// createEntity opens the creation form of a content type or component
func (a *App) createEntity(modal navigation.ModalType, kind schema.Kind) {
	a.dispatch(navigation.OpenCreateSchema{ModalType: modal, Kind: kind})
}

// renderBuilder shows the builder's current modal, or hides it when closed
func (a *App) renderBuilder() {
	nav := a.builder.Nav()
	if !nav.IsOpen {
		a.HideModal(pageBuilder)
		a.refreshAttributes()
		return
	}

	a.header.SetLocation(a.locationOf(nav))
	var content tview.Primitive
	if nav.ModalType == navigation.ModalChooseAttribute {
		content = a.newPicker(nav)
	} else {
		content = a.newBuilderForm(nav)
	}
	a.ShowModal(pageBuilder, createCenteredModal(content, formWidth, formHeight))
}

// rerender rebuilds the open modal once the current event is handled
func (a *App) rerender(label string) {
	a.focusLabel = label
	a.update(a.renderBuilder)
}

// locationOf names what the modal works on, for the header
func (a *App) locationOf(nav navigation.State) string {
	if nav.TargetUID == "" {
		return "New " + schema.Humanize(string(nav.ModalType))
	}
	forTarget := nav.ForTarget
	if forTarget == "" {
		forTarget = schema.ModelContentType
		if nav.ModalType == navigation.ModalComponent {
			forTarget = schema.ModelComponent
		}
	}
	if e, err := a.registry.Get(forTarget, nav.TargetUID); err == nil {
		return e.DisplayName()
	}
	return nav.TargetUID
}

// formTitle describes the open modal
func (a *App) formTitle(nav navigation.State) string {
	target := a.locationOf(nav)
	switch nav.ModalType {
	case navigation.ModalContentType:
		if nav.IsEditing() {
			return "Edit " + target
		}
		return "Create a " + strings.ToLower(schema.Humanize(string(nav.Kind)))
	case navigation.ModalComponent:
		if nav.IsEditing() {
			return "Edit " + target
		}
		return "Create a component"
	case navigation.ModalAddComponentToDynamicZone:
		return fmt.Sprintf("Add components to %s", nav.DynamicZoneTarget)
	}

	kind := schema.Humanize(nav.AttributeType)
	if nav.CustomFieldUID != "" {
		if cf, err := a.fields.Get(nav.CustomFieldUID); err == nil {
			kind = cf.DisplayLabel()
		}
	}
	if nav.IsEditing() {
		return fmt.Sprintf("Edit %s (%s)", nav.AttributeName, kind)
	}
	return fmt.Sprintf("Add a %s field to %s", kind, target)
}

// newPicker lists the attribute types and custom fields the target accepts
func (a *App) newPicker(nav navigation.State) tview.Primitive {
	list := tview.NewList().
		SetMainTextColor(styles.ColorText).
		SetSecondaryTextColor(styles.ColorDim).
		SetSelectedBackgroundColor(styles.ColorHighlight)

	for _, item := range a.pickerItems(nav) {
		list.AddItem(item.label, item.description, item.shortcut, func() {
			a.dispatch(item.event)
		})
	}
	list.SetDoneFunc(a.closeBuilder)
	list.SetBorder(true).SetTitle(tview.Escape(fmt.Sprintf(" Select a field for %s ", a.locationOf(nav))))
	return list
}

// closeBuilder closes the open modal, asking first when the draft has changes
func (a *App) closeBuilder() {
	err := a.builder.Close(!a.config.UI.ConfirmOnClose)
	if errors.IsType(err, errors.ErrorTypeUnsaved) {
		a.confirm("Discard changes", "Are you sure? Your changes will be lost.", "Discard", func() {
			_ = a.builder.Close(true)
			a.renderBuilder()
		}, nil)
		return
	}
	a.renderBuilder()
}

// newBuilderForm renders the inputs of the active tab as a form
func (a *App) newBuilderForm(nav navigation.State) tview.Primitive {
	base, advanced := a.builder.Form()
	st := a.builder.State()

	inputs := base
	if nav.ActiveTab == navigation.TabAdvanced && len(advanced) > 0 {
		inputs = advanced
	}

	form := styles.Form(tview.NewForm())
	for _, in := range inputs {
		a.addInput(form, nav, st, in)
	}
	a.addButtons(form, nav, len(advanced) > 0)
	form.SetCancelFunc(a.closeBuilder)

	if a.focusLabel != "" {
		if idx := form.GetFormItemIndex(a.focusLabel); idx >= 0 {
			form.SetFocus(idx)
		}
	}

	tabs := tview.NewTextView().SetDynamicColors(true).
		SetText(tabsLine(nav.ActiveTab, len(advanced) > 0, formmodal.TabErrors(st.FormErrors, base, advanced)))

	errorsView := tview.NewTextView().SetDynamicColors(true).
		SetText(errorLines(st.FormErrors, append(base, advanced...), a.conditionErr))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tabs, 1, 0, false).
		AddItem(form, 0, 1, true).
		AddItem(errorsView, min(len(st.FormErrors)+1, 6), 0, false)
	layout.SetBorder(true).SetTitle(tview.Escape(" " + a.formTitle(nav) + " "))
	return layout
}

// addButtons adds the submit, navigation and tab buttons of the modal
func (a *App) addButtons(form *tview.Form, nav navigation.State, hasAdvanced bool) {
	attributeModal := nav.ModalType == navigation.ModalAttribute || nav.ModalType == navigation.ModalCustomField

	switch {
	case nav.ModalType == navigation.ModalAttribute && nav.AttributeType == schema.TypeComponent && nav.Step == 1:
		form.AddButton("Configure the component", func() { a.submit(false) })
	case nav.ModalType == navigation.ModalAttribute && nav.AttributeType == schema.TypeDynamicZone && nav.IsCreating():
		form.AddButton("Add components to the zone", func() { a.submit(false) })
	case attributeModal && nav.IsCreating():
		form.AddButton("Add another field", func() { a.submit(true) })
		form.AddButton("Finish", func() { a.submit(false) })
	default:
		form.AddButton("Finish", func() { a.submit(false) })
	}

	if hasAdvanced {
		if nav.ActiveTab == navigation.TabAdvanced {
			form.AddButton("Basic settings", func() { a.switchTab(navigation.TabBasic) })
		} else {
			form.AddButton("Advanced settings", func() { a.switchTab(navigation.TabAdvanced) })
		}
	}
	if nav.ShowBackLink {
		form.AddButton("Back", func() { a.dispatch(navigation.Back{}) })
	}
	form.AddButton("Cancel", a.closeBuilder)
}

func (a *App) switchTab(tab navigation.Tab) {
	if _, err := a.builder.Navigate(navigation.SetActiveTab{Tab: tab}); err != nil {
		a.statusBar.Error(err.Error())
		return
	}
	a.focusLabel = ""
	a.renderBuilder()
}

// submit validates and commits the open form
func (a *App) submit(shouldContinue bool) {
	if a.conditionErr != "" {
		a.statusBar.Error(a.conditionErr)
		return
	}
	out, err := a.builder.Submit(a.ctx, shouldContinue)
	a.afterSubmit(out, err)
}

// afterSubmit reports a submission and shows what the builder moved to
func (a *App) afterSubmit(out builder.Outcome, err error) {
	if err != nil {
		a.statusBar.Error(err.Error())
		a.renderBuilder()
		return
	}

	switch out.Status {
	case builder.StatusInvalid:
		a.statusBar.Error(fmt.Sprintf("%d invalid field(s)", len(out.Errors)))
	case builder.StatusNeedsConfirmation:
		a.confirm("Conditions will break", out.Breakage.Message(), "Proceed", func() {
			next, err := a.builder.Confirm(a.ctx)
			a.afterSubmit(next, err)
		}, a.builder.CancelConfirm)
		return
	case builder.StatusCommitted:
		a.refresh()
		if uid := out.RedirectUID; uid != "" {
			forTarget := schema.ModelContentType
			if a.registry.Exists(schema.ModelComponent, uid) {
				forTarget = schema.ModelComponent
			}
			a.selectEntity(forTarget, uid)
		}
		a.statusBar.Success("Changes applied, press s to save")
	}

	a.focusLabel = ""
	a.renderBuilder()
}

// tabsLine renders the tab headers with their error counts
func tabsLine(active navigation.Tab, hasAdvanced bool, errs map[navigation.Tab]int) string {
	tab := func(t navigation.Tab, title string) string {
		if n := errs[t]; n > 0 {
			title = fmt.Sprintf("%s [red](%d)[-]", title, n)
		}
		if t == active {
			return "[::bu]" + title + "[::-]"
		}
		return title
	}
	if !hasAdvanced {
		return tab(navigation.TabBasic, "Basic settings")
	}
	return tab(navigation.TabBasic, "Basic settings") + "  |  " + tab(navigation.TabAdvanced, "Advanced settings")
}

// errorLines lists form errors by input label, in input order
func errorLines(errs formmodal.FormErrors, inputs []formmodal.Input, extra string) string {
	var lines []string
	paths := sortedKeys(errs)
	seen := make(map[string]bool)
	for _, in := range inputs {
		for _, path := range paths {
			if seen[path] || (path != in.Name && !strings.HasPrefix(path, in.Name+".")) {
				continue
			}
			seen[path] = true
			lines = append(lines, fmt.Sprintf("[red]✗ %s: %s[-]", tview.Escape(in.Label), tview.Escape(errs[path])))
		}
	}
	for _, path := range paths {
		if !seen[path] {
			lines = append(lines, fmt.Sprintf("[red]✗ %s: %s[-]", tview.Escape(path), tview.Escape(errs[path])))
		}
	}
	if extra != "" {
		lines = append(lines, "[red]✗ "+tview.Escape(extra)+"[-]")
	}
	return strings.Join(lines, "\n")
}

// createCenteredModal creates a centered modal with fixed dimensions
func createCenteredModal(content tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(content, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
