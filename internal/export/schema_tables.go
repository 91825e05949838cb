package export

import (
	"strconv"
	"time"

	"github.com/jontk/ctb/internal/schema"
)

// EntitiesTableData lists the content types, then the components, of snap.
func EntitiesTableData(snap schema.Snapshot) *TableData {
	rows := make([][]string, 0, len(snap.ContentTypes)+len(snap.Components))
	for _, e := range snap.ContentTypes {
		rows = append(rows, []string{e.UID, e.DisplayName(), kindLabel(e, schema.ModelContentType), strconv.Itoa(len(e.Attributes))})
	}
	for _, e := range snap.Components {
		rows = append(rows, []string{e.UID, e.DisplayName(), kindLabel(e, schema.ModelComponent), strconv.Itoa(len(e.Attributes))})
	}
	return &TableData{
		Title:      "Entities",
		Headers:    []string{"UID", "Name", "Type", "Attributes"},
		Rows:       rows,
		ExportedAt: time.Now(),
	}
}

// AttributesTableData has one row per attribute of every entity in snap
func AttributesTableData(snap schema.Snapshot) *TableData {
	var rows [][]string
	add := func(e *schema.EntitySchema, forTarget schema.ModelType) {
		for _, attr := range e.Attributes {
			rows = append(rows, []string{
				e.UID,
				kindLabel(e, forTarget),
				attr.Name(),
				schema.Humanize(attr.Type()),
				attr.Summary(),
			})
		}
	}
	for _, e := range snap.ContentTypes {
		add(e, schema.ModelContentType)
	}
	for _, e := range snap.Components {
		add(e, schema.ModelComponent)
	}
	return &TableData{
		Title:      "Attributes",
		Headers:    []string{"Entity", "Entity type", "Attribute", "Type", "Details"},
		Rows:       rows,
		ExportedAt: time.Now(),
	}
}

func kindLabel(e *schema.EntitySchema, forTarget schema.ModelType) string {
	if forTarget == schema.ModelComponent {
		return "Component (" + e.Category + ")"
	}
	return schema.Humanize(string(e.Kind))
}
