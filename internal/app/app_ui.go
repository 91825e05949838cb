package app

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/jontk/ctb/internal/schema"
	"github.com/jontk/ctb/internal/ui/components"
	"github.com/jontk/ctb/internal/ui/styles"
)

const appTitle = "CTB - Content-Type Builder"

var mainHints = []string{
	"[yellow]a[white] Add field", "[yellow]e[white] Edit", "[yellow]d[white] Delete",
	"[yellow]n/N[white] New collection/single", "[yellow]c[white] New component",
	"[yellow]s[white] Save", "[yellow]:[white] Command", "[yellow]?[white] Help", "[yellow]q[white] Quit",
}

// initUI initializes the UI components
func (a *App) initUI() {
	a.header = components.NewHeader(appTitle)
	a.header.SetSchemaPath(a.store.Path())

	a.statusBar = components.NewStatusBar()
	a.statusBar.SetHints(mainHints)
	a.statusBar.SetChangedFunc(func() {
		if a.running() {
			a.app.Draw()
		}
	})

	a.entities = styles.Table(tview.NewTable()).
		SetSelectable(true, false).
		SetSelectionChangedFunc(func(row, _ int) { a.onEntitySelected(row) }).
		SetSelectedFunc(func(_, _ int) { a.app.SetFocus(a.attributes) })
	a.entities.SetBorder(true).SetTitle(" Entities ")

	a.attributes = styles.Table(tview.NewTable()).
		SetSelectable(true, false).
		SetFixed(1, 0).
		SetSelectedFunc(func(row, _ int) { a.editSelectedAttribute() })
	a.attributes.SetBorder(true)

	a.cmdLine = styles.InputField(tview.NewInputField()).
		SetLabel(":").
		SetDoneFunc(a.onCommandDone).
		SetAutocompleteFunc(a.getCompletions)
	a.cmdLine.SetInputCapture(a.historyKey)

	body := tview.NewFlex().
		AddItem(a.entities, 0, 1, true).
		AddItem(a.attributes, 0, 2, false)

	a.mainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 2, 0, false).
		AddItem(body, 0, 1, true).
		AddItem(a.cmdLine, 0, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage(pageMain, a.mainLayout, true, true)
}

// refresh redraws everything that depends on the registry
func (a *App) refresh() {
	a.refreshEntities()
	a.refreshAttributes()
	a.header.SetUnsaved(a.registry.Pending().Count())
}

// refreshEntities lists content types by kind, then components by category
func (a *App) refreshEntities() {
	a.entities.Clear()
	a.entityRows = a.entityRows[:0]
	pending := a.registry.Pending()

	addSection := func(title string) {
		a.entities.SetCell(len(a.entityRows), 0, styles.Header(title))
		a.entityRows = append(a.entityRows, nil)
	}
	addEntity := func(e *schema.EntitySchema, forTarget schema.ModelType) {
		name := e.DisplayName()
		if pending.Has(e.UID) {
			name += " ●"
		}
		a.entities.SetCell(len(a.entityRows), 0, tview.NewTableCell("  "+tview.Escape(name)).SetExpansion(1))
		a.entityRows = append(a.entityRows, &entityRef{ForTarget: forTarget, UID: e.UID})
	}

	var collections, singles []*schema.EntitySchema
	for _, e := range a.registry.SortedContentTypes() {
		if e.Kind == schema.KindSingle {
			singles = append(singles, e)
		} else {
			collections = append(collections, e)
		}
	}
	addSection(fmt.Sprintf("COLLECTION TYPES (%d)", len(collections)))
	for _, e := range collections {
		addEntity(e, schema.ModelContentType)
	}
	addSection(fmt.Sprintf("SINGLE TYPES (%d)", len(singles)))
	for _, e := range singles {
		addEntity(e, schema.ModelContentType)
	}

	comps := a.registry.SortedComponents()
	addSection(fmt.Sprintf("COMPONENTS (%d)", len(comps)))
	category := ""
	for _, e := range comps {
		if e.Category != category {
			category = e.Category
			a.entities.SetCell(len(a.entityRows), 0, tview.NewTableCell(" "+tview.Escape(category)).
				SetTextColor(styles.ColorDim).SetSelectable(false))
			a.entityRows = append(a.entityRows, nil)
		}
		addEntity(e, schema.ModelComponent)
	}

	// keep the selection on the same entity when it still exists
	row := a.rowOf(a.selected)
	if row < 0 {
		row = a.firstEntityRow()
	}
	if row >= 0 {
		a.entities.Select(row, 0)
	}
	a.selected = a.entityAt(row)
}

// refreshAttributes shows the attributes of the selected entity
func (a *App) refreshAttributes() {
	selectedRow, _ := a.attributes.GetSelection()
	a.attributes.Clear()

	entity := a.selectedEntity()
	if entity == nil {
		a.attributes.SetTitle(" No entity selected ")
		a.header.SetLocation("")
		return
	}

	title := fmt.Sprintf(" %s (%s) ", entity.DisplayName(), entity.UID)
	if entity.Category != "" {
		title = fmt.Sprintf(" %s (%s, %s) ", entity.DisplayName(), entity.UID, entity.Category)
	}
	a.attributes.SetTitle(tview.Escape(title))
	a.header.SetLocation(entity.DisplayName())

	for col, h := range []string{"NAME", "TYPE", "DETAILS"} {
		a.attributes.SetCell(0, col, styles.Header(h))
	}
	for i, attr := range entity.Attributes {
		row := i + 1
		a.attributes.SetCell(row, 0, tview.NewTableCell(tview.Escape(attr.Name())))
		a.attributes.SetCell(row, 1, tview.NewTableCell(tview.Escape(a.typeLabel(attr))))
		a.attributes.SetCell(row, 2, tview.NewTableCell(tview.Escape(attr.Summary())).SetExpansion(1))
	}
	if len(entity.Attributes) == 0 {
		a.attributes.SetCell(1, 0, tview.NewTableCell("No fields yet, press a to add one").
			SetTextColor(styles.ColorDim).SetSelectable(false))
		return
	}

	selectedRow = min(max(selectedRow, 1), len(entity.Attributes))
	a.attributes.Select(selectedRow, 0)
}

// typeLabel names an attribute's type, or its custom field's label
func (a *App) typeLabel(attr schema.Attribute) string {
	if uid := attr.CustomField(); uid != "" {
		if cf, err := a.fields.Get(uid); err == nil {
			return cf.DisplayLabel()
		}
		return uid
	}
	return schema.Humanize(attr.Type())
}

func (a *App) onEntitySelected(row int) {
	ref := a.entityAt(row)
	if ref == nil || (a.selected != nil && *a.selected == *ref) {
		return
	}
	a.selected = ref
	a.attributes.Select(1, 0)
	a.refreshAttributes()
	a.rememberSelection()
}

// selectEntity moves the selection to uid, e.g. after creating it
func (a *App) selectEntity(forTarget schema.ModelType, uid string) {
	ref := &entityRef{ForTarget: forTarget, UID: uid}
	if row := a.rowOf(ref); row >= 0 {
		a.selected = ref
		a.entities.Select(row, 0)
		a.attributes.Select(1, 0)
		a.refreshAttributes()
		a.rememberSelection()
	}
}

// restoreSelection preselects the entity selected when this schema file was
// last open; refreshEntities falls back to the first entity when it is gone
func (a *App) restoreSelection() {
	if a.prefs == nil {
		return
	}
	if last, ok := a.prefs.LastEntity(a.store.Path()); ok {
		a.selected = &entityRef{ForTarget: schema.ModelType(last.LastTarget), UID: last.LastEntity}
	}
}

func (a *App) rememberSelection() {
	if a.prefs != nil && a.selected != nil {
		a.prefs.SetLastEntity(a.store.Path(), string(a.selected.ForTarget), a.selected.UID)
	}
}

func (a *App) selectedEntity() *schema.EntitySchema {
	if a.selected == nil {
		return nil
	}
	e, err := a.registry.Get(a.selected.ForTarget, a.selected.UID)
	if err != nil {
		return nil
	}
	return e
}

// selectedAttribute returns the attribute under the cursor of the attribute table
func (a *App) selectedAttribute() (schema.Attribute, bool) {
	entity := a.selectedEntity()
	if entity == nil {
		return nil, false
	}
	row, _ := a.attributes.GetSelection()
	if row < 1 || row > len(entity.Attributes) {
		return nil, false
	}
	return entity.Attributes[row-1], true
}

func (a *App) entityAt(row int) *entityRef {
	if row < 0 || row >= len(a.entityRows) {
		return nil
	}
	return a.entityRows[row]
}

func (a *App) rowOf(ref *entityRef) int {
	if ref == nil {
		return -1
	}
	for i, r := range a.entityRows {
		if r != nil && *r == *ref {
			return i
		}
	}
	return -1
}

func (a *App) firstEntityRow() int {
	for i, r := range a.entityRows {
		if r != nil {
			return i
		}
	}
	return -1
}
