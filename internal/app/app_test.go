package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/ctb/internal/builder"
	"github.com/jontk/ctb/internal/config"
	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/preferences"
	"github.com/jontk/ctb/internal/schema"
)

const article = "api::article.article"

func fixture() schema.Snapshot {
	return schema.Snapshot{
		ContentTypes: []*schema.EntitySchema{
			{
				UID:  article,
				Kind: schema.KindCollection,
				Info: schema.Info{DisplayName: "Article", SingularName: "article", PluralName: "articles"},
				Attributes: []schema.Attribute{
					{"name": "title", "type": schema.TypeString},
					{"name": "status", "type": schema.TypeEnumeration, "enum": []any{"draft", "published"}},
					{"name": "blocks", "type": schema.TypeDynamicZone, "components": []any{"shared.seo"}},
				},
			},
			{
				UID:  "api::home.home",
				Kind: schema.KindSingle,
				Info: schema.Info{DisplayName: "Home", SingularName: "home", PluralName: "homes"},
			},
		},
		Components: []*schema.EntitySchema{
			{UID: "shared.seo", Info: schema.Info{DisplayName: "Seo"}, Attributes: []schema.Attribute{{"name": "metaTitle", "type": schema.TypeString}}},
			{UID: "sections.hero", Info: schema.Info{DisplayName: "Hero"}},
		},
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Watch.Enabled = false
	cfg.UI.EnableMouse = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Load(fixture()))

	screen := tcell.NewSimulationScreen("UTF-8")
	a, err := NewWithScreen(context.Background(), Options{
		Config:   cfg,
		Store:    schema.NewFileStore(filepath.Join(t.TempDir(), "schema.yaml")),
		Registry: reg,
		Logger:   logging.Nop(),
	}, screen)
	require.NoError(t, err)
	t.Cleanup(a.Stop)
	return a
}

func statusText(a *App) string {
	return a.statusBar.GetText(true)
}

func TestNew(t *testing.T) {
	reg := schema.NewRegistry()
	store := schema.NewFileStore(filepath.Join(t.TempDir(), "schema.yaml"))

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name:    "nil config",
			opts:    Options{Store: store, Registry: reg},
			wantErr: true,
		},
		{
			name:    "missing registry",
			opts:    Options{Config: testConfig(), Store: store},
			wantErr: true,
		},
		{
			name: "valid options",
			opts: Options{Config: testConfig(), Store: store, Registry: reg, Logger: logging.Nop()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewWithScreen(context.Background(), tt.opts, tcell.NewSimulationScreen("UTF-8"))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, app)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, app)
			defer app.Stop()

			assert.NotNil(t, app.header)
			assert.NotNil(t, app.statusBar)
			assert.NotNil(t, app.cmdLine)
			assert.NotNil(t, app.GetBuilder())
			assert.False(t, app.IsModalOpen())
			assert.False(t, app.IsCmdVisible())
		})
	}
}

func TestEntityList(t *testing.T) {
	a := newTestApp(t, testConfig())

	cells := make([]string, a.entities.GetRowCount())
	for row := range cells {
		cells[row] = a.entities.GetCell(row, 0).Text
	}
	assert.Equal(t, []string{
		"COLLECTION TYPES (1)",
		"  Article",
		"SINGLE TYPES (1)",
		"  Home",
		"COMPONENTS (2)",
		" sections",
		"  Hero",
		" shared",
		"  Seo",
	}, cells)

	require.NotNil(t, a.selected, "the first entity is selected")
	assert.Equal(t, article, a.selected.UID)
	assert.Equal(t, 4, a.attributes.GetRowCount(), "header row plus three attributes")
	assert.Equal(t, "title", a.attributes.GetCell(1, 0).Text)
}

func TestSelectEntity(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.selectEntity(schema.ModelComponent, "shared.seo")
	require.NotNil(t, a.selected)
	assert.Equal(t, schema.ModelComponent, a.selected.ForTarget)
	assert.Contains(t, a.header.Text(), "Seo")

	a.selectEntity(schema.ModelComponent, "shared.missing")
	assert.Equal(t, "shared.seo", a.selected.UID, "unknown uids keep the selection")
}

func TestAddFieldFlow(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.addField()
	assert.Equal(t, pageBuilder, a.GetModalName())
	assert.Equal(t, navigation.ModalChooseAttribute, a.builder.Nav().ModalType)

	a.dispatch(navigation.SelectField{AttributeType: schema.TypeBoolean})
	require.Equal(t, navigation.ModalAttribute, a.builder.Nav().ModalType)

	a.builder.HandleChange("name", "featured")
	a.submit(false)

	assert.False(t, a.builder.Nav().IsOpen)
	assert.False(t, a.IsModalOpen())

	e, err := a.registry.ContentType(article)
	require.NoError(t, err)
	attr, _ := e.Attribute("featured")
	require.NotNil(t, attr)
	assert.Equal(t, schema.TypeBoolean, attr.Type())

	assert.Equal(t, "  Article ●", a.entities.GetCell(1, 0).Text)
	assert.Contains(t, a.header.Text(), "1 unsaved")
	assert.Equal(t, 5, a.attributes.GetRowCount())
}

func TestNumberInputsStoreNumbers(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.addField()
	a.dispatch(navigation.SelectField{AttributeType: schema.TypeText})
	a.builder.HandleChange("name", "summary")

	form := tview.NewForm()
	a.addInput(form, a.builder.Nav(), a.builder.State(), formmodal.Input{Name: "maxLength", Label: "Maximum length", Kind: formmodal.InputNumber})
	field, ok := form.GetFormItemByLabel("Maximum length").(*tview.InputField)
	require.True(t, ok)

	field.SetText("80")
	assert.Equal(t, 80, a.builder.State().Get("maxLength"))
	field.SetText("")
	assert.Nil(t, a.builder.State().Get("maxLength"), "an empty bound is cleared")
	field.SetText("80")

	a.submit(false)
	require.False(t, a.builder.Nav().IsOpen)

	e, err := a.registry.ContentType(article)
	require.NoError(t, err)
	attr, _ := e.Attribute("summary")
	require.NotNil(t, attr)
	assert.Equal(t, 80, attr["maxLength"])
}

func TestAddFieldAndContinue(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.addField()
	a.dispatch(navigation.SelectField{AttributeType: schema.TypeText})
	a.builder.HandleChange("name", "subtitle")
	a.submit(true)

	assert.Equal(t, pageBuilder, a.GetModalName(), "the picker stays open")
	assert.Equal(t, navigation.ModalChooseAttribute, a.builder.Nav().ModalType)
}

func TestInvalidSubmitKeepsTheForm(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.addField()
	a.dispatch(navigation.SelectField{AttributeType: schema.TypeText})
	a.builder.HandleChange("name", "title")
	a.submit(false)

	assert.Equal(t, navigation.ModalAttribute, a.builder.Nav().ModalType)
	assert.Contains(t, a.builder.State().FormErrors, "name")
	assert.Contains(t, statusText(a), "invalid field")
}

func TestInvalidConditionBlocksSubmit(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.addField()
	a.dispatch(navigation.SelectField{AttributeType: schema.TypeText})
	a.builder.HandleChange("name", "note")
	a.conditionErr = "visibility condition must look like field==value or field!=value"
	a.submit(false)

	assert.True(t, a.builder.Nav().IsOpen)
	assert.Contains(t, statusText(a), "visibility condition")
}

func TestCloseBuilder(t *testing.T) {
	t.Run("asks before discarding a draft", func(t *testing.T) {
		a := newTestApp(t, testConfig())
		a.addField()
		a.dispatch(navigation.SelectField{AttributeType: schema.TypeText})
		a.builder.HandleChange("name", "draft")

		a.closeBuilder()
		assert.True(t, a.builder.Nav().IsOpen)
		assert.Equal(t, pageConfirm, a.GetModalName())
	})

	t.Run("closes an untouched form", func(t *testing.T) {
		a := newTestApp(t, testConfig())
		a.addField()
		a.dispatch(navigation.SelectField{AttributeType: schema.TypeText})

		a.closeBuilder()
		assert.False(t, a.builder.Nav().IsOpen)
		assert.False(t, a.IsModalOpen())
	})

	t.Run("discards without asking when configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.UI.ConfirmOnClose = false
		a := newTestApp(t, cfg)
		a.addField()
		a.dispatch(navigation.SelectField{AttributeType: schema.TypeText})
		a.builder.HandleChange("name", "draft")

		a.closeBuilder()
		assert.False(t, a.builder.Nav().IsOpen)
		assert.False(t, a.IsModalOpen())
	})
}

func TestAddFieldWithoutSelection(t *testing.T) {
	a := newTestApp(t, testConfig())
	a.selected = nil

	a.addField()
	assert.False(t, a.builder.Nav().IsOpen)
	assert.Contains(t, statusText(a), "Select a content type or component first")
}

func TestAddComponentsToZoneNeedsADynamicZone(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.attributes.Select(1, 0)
	a.addComponentsToZone()
	assert.False(t, a.builder.Nav().IsOpen)

	a.attributes.Select(3, 0)
	a.addComponentsToZone()
	assert.Equal(t, navigation.ModalAddComponentToDynamicZone, a.builder.Nav().ModalType)
	assert.Equal(t, "blocks", a.builder.Nav().DynamicZoneTarget)
}

func TestEditSelectedAttribute(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.attributes.Select(2, 0)
	a.editSelectedAttribute()

	nav := a.builder.Nav()
	assert.True(t, nav.IsEditing())
	assert.Equal(t, "status", nav.AttributeName)
	assert.Equal(t, schema.TypeEnumeration, nav.AttributeType)
}

func TestSave(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.save()
	assert.Contains(t, statusText(a), "Nothing to save")

	require.NoError(t, a.registry.DeleteComponent("sections.hero"))
	a.save()
	assert.False(t, a.registry.HasPendingChanges())
	assert.FileExists(t, a.store.Path())
	assert.Contains(t, statusText(a), "Saved 1 change(s)")
}

func TestReloadAsksWhenChangesArePending(t *testing.T) {
	a := newTestApp(t, testConfig())
	require.NoError(t, a.registry.DeleteComponent("sections.hero"))

	a.reload()
	assert.Equal(t, pageConfirm, a.GetModalName())
	assert.True(t, a.registry.Exists(schema.ModelContentType, article), "nothing is reloaded before confirming")
}

func TestDeleteAsksFirst(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.deleteSelectedEntity()
	assert.Equal(t, pageConfirm, a.GetModalName())
	assert.True(t, a.registry.Exists(schema.ModelContentType, article))

	a.HideModal(pageConfirm)
	a.attributes.Select(1, 0)
	a.deleteSelectedAttribute()
	assert.Equal(t, pageConfirm, a.GetModalName())
}

func TestCommands(t *testing.T) {
	t.Run("collection prefills the names", func(t *testing.T) {
		a := newTestApp(t, testConfig())
		a.executeCommand(`ct "Blog Post"`)

		nav := a.builder.Nav()
		require.True(t, nav.IsOpen)
		assert.Equal(t, navigation.ModalContentType, nav.ModalType)
		assert.Equal(t, schema.KindCollection, nav.Kind)

		st := a.builder.State()
		assert.Equal(t, "Blog Post", st.Get("displayName"))
		assert.Equal(t, "blog-post", st.Get("singularName"))
		assert.Equal(t, "blog-posts", st.Get("pluralName"))

		a.submit(false)
		assert.True(t, a.registry.Exists(schema.ModelContentType, "api::blog-post.blog-post"))
		require.NotNil(t, a.selected)
		assert.Equal(t, "api::blog-post.blog-post", a.selected.UID, "the new content type is selected")
	})

	t.Run("component takes a category", func(t *testing.T) {
		a := newTestApp(t, testConfig())
		a.executeCommand("component shared Quote Block")

		st := a.builder.State()
		assert.Equal(t, navigation.ModalComponent, a.builder.Nav().ModalType)
		assert.Equal(t, "shared", st.Get("category"))
		assert.Equal(t, "Quote Block", st.Get("displayName"))
	})

	t.Run("goto selects an entity", func(t *testing.T) {
		a := newTestApp(t, testConfig())
		a.executeCommand("g shared.seo")

		require.NotNil(t, a.selected)
		assert.Equal(t, "shared.seo", a.selected.UID)
	})

	t.Run("add skips the picker", func(t *testing.T) {
		a := newTestApp(t, testConfig())
		a.executeCommand("add boolean")

		nav := a.builder.Nav()
		assert.Equal(t, navigation.ModalAttribute, nav.ModalType)
		assert.Equal(t, schema.TypeBoolean, nav.AttributeType)
	})

	t.Run("add refuses types the target does not accept", func(t *testing.T) {
		a := newTestApp(t, testConfig())
		a.selectEntity(schema.ModelComponent, "shared.seo")
		a.executeCommand("add dynamiczone")

		assert.False(t, a.builder.Nav().IsOpen)
		assert.Contains(t, statusText(a), "does not accept")
	})

	t.Run("delete asks first", func(t *testing.T) {
		a := newTestApp(t, testConfig())
		a.executeCommand("delete sections.hero")

		assert.Equal(t, pageConfirm, a.GetModalName())
		assert.True(t, a.registry.Exists(schema.ModelComponent, "sections.hero"))
	})

	t.Run("export writes next to the schema file", func(t *testing.T) {
		a := newTestApp(t, testConfig())
		path := filepath.Join(filepath.Dir(a.store.Path()), "model.md")
		a.executeCommand("export md " + path)

		assert.FileExists(t, path)
		assert.Contains(t, statusText(a), "Exported 4 attributes to "+path)

		a.executeCommand("export pdf")
		assert.Contains(t, statusText(a), "unsupported format")
	})

	t.Run("errors go to the status bar", func(t *testing.T) {
		tests := []struct {
			input string
			want  string
		}{
			{"nope", "Unknown command: nope"},
			{"goto", "usage: goto <uid>"},
			{"goto api::missing.missing", "no content type or component"},
			{`ct "Blog`, "unterminated quote"},
		}
		for _, tt := range tests {
			a := newTestApp(t, testConfig())
			a.executeCommand(tt.input)
			assert.Contains(t, statusText(a), tt.want, tt.input)
		}
	})
}

func TestCommandLine(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.showCommandLine()
	assert.True(t, a.IsCmdVisible())

	a.cmdLine.SetText("goto shared.seo")
	a.onCommandDone(tcell.KeyEnter)
	assert.False(t, a.IsCmdVisible())
	assert.Equal(t, "shared.seo", a.selected.UID)

	a.showCommandLine()
	a.cmdLine.SetText("goto " + article)
	a.onCommandDone(tcell.KeyEscape)
	assert.Equal(t, "shared.seo", a.selected.UID, "escape discards the command")
}

func TestQuitWithoutChangesStops(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.quit()
	assert.False(t, a.IsModalOpen())
	assert.Error(t, a.ctx.Err(), "stopping cancels the app context")
}

func TestQuitAsksAboutUnsavedChanges(t *testing.T) {
	a := newTestApp(t, testConfig())
	require.NoError(t, a.registry.DeleteComponent("sections.hero"))

	a.quit()
	assert.Equal(t, pageConfirm, a.GetModalName())
	assert.NoError(t, a.ctx.Err())
}

func TestHelpAndPending(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.showHelp()
	assert.Equal(t, pageHelp, a.GetModalName())
	a.HideModal(pageHelp)

	a.showPending()
	assert.False(t, a.IsModalOpen(), "nothing pending")
	assert.Contains(t, statusText(a), "No unsaved changes")

	require.NoError(t, a.registry.DeleteComponent("sections.hero"))
	a.showPending()
	assert.Equal(t, pagePending, a.GetModalName())
}

func TestNotificationsReachTheStatusBar(t *testing.T) {
	a := newTestApp(t, testConfig())

	a.executeCommand("component shared Quote")
	out, err := a.builder.Submit(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, builder.StatusCommitted, out.Status)

	assert.Contains(t, statusText(a), "Component created: shared.quote")
}

func TestPreferences(t *testing.T) {
	prefs, err := preferences.NewUserPreferences(filepath.Join(t.TempDir(), preferences.FileName))
	require.NoError(t, err)

	reg := schema.NewRegistry()
	require.NoError(t, reg.Load(fixture()))
	opts := Options{
		Config:      testConfig(),
		Store:       schema.NewFileStore(filepath.Join(t.TempDir(), "schema.yaml")),
		Registry:    reg,
		Logger:      logging.Nop(),
		Preferences: prefs,
	}

	a, err := NewWithScreen(context.Background(), opts, tcell.NewSimulationScreen("UTF-8"))
	require.NoError(t, err)
	a.executeCommand("goto shared.seo")
	a.Stop()
	assert.FileExists(t, prefs.Path(), "stopping saves the preferences")
	assert.Equal(t, []string{"goto shared.seo"}, prefs.GetHistory())

	b, err := NewWithScreen(context.Background(), opts, tcell.NewSimulationScreen("UTF-8"))
	require.NoError(t, err)
	defer b.Stop()
	require.NotNil(t, b.selected)
	assert.Equal(t, "shared.seo", b.selected.UID, "the last selection is restored")

	b.showCommandLine()
	b.historyKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	assert.Equal(t, "goto shared.seo", b.cmdLine.GetText())
	b.historyKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	assert.Equal(t, "", b.cmdLine.GetText())

	b.cmdLine.SetText("go")
	assert.NotNil(t, b.historyKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)), "typed text keeps the arrow keys")
}
