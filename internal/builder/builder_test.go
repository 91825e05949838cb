package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/notifications"
	"github.com/jontk/ctb/internal/schema"
)

const article = "api::article.article"

func fixture() schema.Snapshot {
	return schema.Snapshot{
		ContentTypes: []*schema.EntitySchema{
			{
				UID:  article,
				Info: schema.Info{DisplayName: "Article", SingularName: "article", PluralName: "articles"},
				Attributes: []schema.Attribute{
					{"name": "title", "type": schema.TypeString},
					{"name": "status", "type": schema.TypeEnumeration, "enum": []any{"draft", "published", "archived"}},
					{"name": "note", "type": schema.TypeText, "conditions": schema.VisibleWhen("==", "status", "draft")},
					{"name": "blocks", "type": schema.TypeDynamicZone, "components": []any{"shared.seo"}},
				},
			},
			{
				UID:        "api::author.author",
				Info:       schema.Info{DisplayName: "Author", SingularName: "author", PluralName: "authors"},
				Attributes: []schema.Attribute{{"name": "name", "type": schema.TypeString}},
			},
			{UID: "admin::user", Info: schema.Info{DisplayName: "User"}},
		},
		Components: []*schema.EntitySchema{
			{UID: "shared.seo", Info: schema.Info{DisplayName: "Seo"}, Attributes: []schema.Attribute{{"name": "metaTitle", "type": schema.TypeString}}},
		},
	}
}

func newBuilder(t *testing.T) (*Builder, *notifications.Recorder) {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Load(fixture()))
	rec := notifications.NewRecorder()
	manager := notifications.NewManager(notifications.DefaultConfig(), nil)
	manager.AddChannel(rec)
	return New(reg, WithNotifier(manager)), rec
}

func navigate(t *testing.T, b *Builder, events ...navigation.Event) {
	t.Helper()
	for _, ev := range events {
		_, err := b.Navigate(ev)
		require.NoError(t, err, navigation.EventName(ev))
	}
}

func submit(t *testing.T, b *Builder, shouldContinue bool) Outcome {
	t.Helper()
	out, err := b.Submit(context.Background(), shouldContinue)
	require.NoError(t, err)
	return out
}

func attribute(t *testing.T, b *Builder, forTarget schema.ModelType, uid, name string) schema.Attribute {
	t.Helper()
	e, err := b.Registry().Get(forTarget, uid)
	require.NoError(t, err)
	attr, _ := e.Attribute(name)
	return attr
}

func openPicker(t *testing.T, b *Builder) {
	t.Helper()
	navigate(t, b, navigation.OpenChooseAttribute{ForTarget: schema.ModelContentType, TargetUID: article})
}

func TestAddAttributeAndContinue(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeText})
	assert.Equal(t, schema.TypeString, b.State().ModifiedData["type"])

	b.HandleChange("name", "subtitle")
	b.HandleChange("maxLength", "80")
	out := submit(t, b, true)

	assert.Equal(t, StatusCommitted, out.Status)
	assert.Equal(t, navigation.ModalChooseAttribute, b.Nav().ModalType, "continue returns to the picker")
	assert.Equal(t, article, b.Nav().TargetUID)
	assert.Empty(t, b.State().ModifiedData, "the picker starts from a fresh draft")

	added := attribute(t, b, schema.ModelContentType, article, "subtitle")
	require.NotNil(t, added)
	assert.Equal(t, schema.TypeString, added.Type())
	assert.Equal(t, []string{article}, b.Pending().Changed)
}

func TestAddAttributeAndClose(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeBoolean})
	b.HandleChange("name", "featured")

	out := submit(t, b, false)
	assert.Equal(t, StatusCommitted, out.Status)
	assert.False(t, b.Nav().IsOpen)
}

func TestInvalidDraftKeepsTheModal(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeNumber})
	b.HandleChange("name", "title")
	b.HandleChange("min", 10)
	b.HandleChange("max", 2)

	out := submit(t, b, true)
	assert.Equal(t, StatusInvalid, out.Status)
	assert.Contains(t, out.Errors, "name")
	assert.Contains(t, out.Errors, "min")
	assert.Equal(t, out.Errors, b.State().FormErrors)
	assert.Equal(t, navigation.ModalAttribute, b.Nav().ModalType)

	b.HandleChange("max", 20)
	assert.NotContains(t, b.State().FormErrors, "min", "changing max clears the min error")
	assert.Contains(t, b.State().FormErrors, "name")
}

func TestRenameNeedsConfirmation(t *testing.T) {
	b, _ := newBuilder(t)
	navigate(t, b, navigation.OpenEditField{
		ForTarget: schema.ModelContentType, TargetUID: article,
		AttributeName: "status", AttributeType: schema.TypeEnumeration,
	})
	b.HandleChange("name", "state")

	out := submit(t, b, false)
	require.Equal(t, StatusNeedsConfirmation, out.Status)
	assert.Equal(t, []string{"note"}, out.Breakage.Dependents)
	assert.True(t, b.AwaitingConfirmation())
	assert.NotNil(t, attribute(t, b, schema.ModelContentType, article, "status"), "nothing is committed yet")

	b.CancelConfirm()
	assert.False(t, b.AwaitingConfirmation())
	assert.NotNil(t, attribute(t, b, schema.ModelContentType, article, "status"))
	assert.Equal(t, "state", b.State().ModifiedData["name"], "the draft survives a cancel")

	out = submit(t, b, false)
	require.Equal(t, StatusNeedsConfirmation, out.Status)
	out, err := b.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, out.Status)
	assert.Nil(t, attribute(t, b, schema.ModelContentType, article, "status"))
	assert.NotNil(t, attribute(t, b, schema.ModelContentType, article, "state"))
}

func TestEnumRemoval(t *testing.T) {
	tests := []struct {
		name   string
		enum   []string
		status Status
	}{
		{"unreferenced value", []string{"draft", "published"}, StatusCommitted},
		{"referenced value", []string{"published", "archived"}, StatusNeedsConfirmation},
		{"added value", []string{"draft", "published", "archived", "review"}, StatusCommitted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newBuilder(t)
			navigate(t, b, navigation.OpenEditField{
				ForTarget: schema.ModelContentType, TargetUID: article,
				AttributeName: "status", AttributeType: schema.TypeEnumeration,
			})
			b.HandleChange("enum", tt.enum)

			out := submit(t, b, false)
			assert.Equal(t, tt.status, out.Status)
			if tt.status == StatusNeedsConfirmation {
				assert.Equal(t, []string{"draft"}, out.Breakage.RemovedValues)
				assert.Equal(t, []any{"draft", "published", "archived"}, attribute(t, b, schema.ModelContentType, article, "status")["enum"])
			}
		})
	}
}

func TestConfirmWithoutPendingSubmission(t *testing.T) {
	b, _ := newBuilder(t)
	out, err := b.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoop, out.Status)
}

func TestChangingTheDraftDropsTheConfirmation(t *testing.T) {
	b, _ := newBuilder(t)
	navigate(t, b, navigation.OpenEditField{
		ForTarget: schema.ModelContentType, TargetUID: article,
		AttributeName: "status", AttributeType: schema.TypeEnumeration,
	})
	b.HandleChange("name", "state")
	require.Equal(t, StatusNeedsConfirmation, submit(t, b, false).Status)

	b.HandleChange("name", "status")
	out, err := b.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoop, out.Status)
	assert.NotNil(t, attribute(t, b, schema.ModelContentType, article, "status"))
}

func TestInlineComponentCancelledAtStepTwo(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeComponent})
	assert.Equal(t, true, b.State().ModifiedData["createComponent"])

	b.HandleChange("componentToCreate.displayName", "Hero")
	b.HandleChange("componentToCreate.category", "sections")
	out := submit(t, b, true)
	require.Equal(t, StatusAdvanced, out.Status)
	assert.Equal(t, 2, b.Nav().Step)
	assert.True(t, b.State().IsCreatingComponentWhileAddingAField)
	assert.Equal(t, "sections.hero", b.State().ModifiedData["component"])

	assert.ErrorIs(t, b.Close(false), ErrUnsavedChanges)
	assert.True(t, b.Nav().IsOpen)
	require.NoError(t, b.Close(true))

	assert.Equal(t, []string{"shared.seo"}, b.Registry().ComponentUIDs(), "no orphan component")
	assert.False(t, b.Registry().HasPendingChanges())
}

func TestInlineComponentCommittedAtStepTwo(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeComponent})
	b.HandleChange("componentToCreate.displayName", "Hero")
	b.HandleChange("componentToCreate.category", "sections")
	require.Equal(t, StatusAdvanced, submit(t, b, true).Status)

	b.HandleChange("repeatable", true)
	out := submit(t, b, true)
	require.Equal(t, StatusCommitted, out.Status)
	assert.Equal(t, "sections.hero", out.RedirectUID)

	hero := attribute(t, b, schema.ModelContentType, article, "hero")
	require.NotNil(t, hero)
	assert.Equal(t, "sections.hero", hero.Component())
	assert.True(t, hero.Bool("repeatable"))

	nav := b.Nav()
	assert.Equal(t, navigation.ModalChooseAttribute, nav.ModalType)
	assert.Equal(t, schema.ModelComponent, nav.ForTarget)
	assert.Equal(t, "sections.hero", nav.TargetUID)
}

func TestExistingComponentFlow(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeComponent})
	b.HandleChange("createComponent", false)
	require.Equal(t, StatusAdvanced, submit(t, b, false).Status)
	assert.False(t, b.State().IsCreatingComponentWhileAddingAField)

	b.HandleChange("name", "seo")
	b.HandleChange("component", "shared.seo")
	require.Equal(t, StatusCommitted, submit(t, b, false).Status)
	assert.Equal(t, "shared.seo", attribute(t, b, schema.ModelContentType, article, "seo").Component())
}

func TestDynamicZoneFlow(t *testing.T) {
	b, rec := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeDynamicZone})
	b.HandleChange("name", "sections")
	require.Equal(t, StatusCommitted, submit(t, b, true).Status)

	nav := b.Nav()
	require.Equal(t, navigation.ModalAddComponentToDynamicZone, nav.ModalType)
	assert.Equal(t, "sections", nav.DynamicZoneTarget)
	assert.Equal(t, false, b.State().ModifiedData["createComponent"])
	assert.Equal(t, "sections", b.State().ModifiedData["name"])
	assert.Empty(t, b.State().ModifiedData["components"])
	assert.False(t, formmodal.HasChanges(b.State()), "the add-components form starts untouched")

	b.HandleChange("components", []string{"shared.missing"})
	out, err := b.Submit(context.Background(), false)
	assert.Error(t, err)
	assert.Equal(t, StatusRejected, out.Status)
	require.NotNil(t, rec.Last())
	assert.Equal(t, notifications.LevelDanger, rec.Last().Level)

	b.HandleChange("components", []string{"shared.seo"})
	require.Equal(t, StatusCommitted, submit(t, b, false).Status)
	assert.Equal(t, []string{"shared.seo"}, attribute(t, b, schema.ModelContentType, article, "sections").Components())
	assert.False(t, b.Nav().IsOpen)
}

func TestDynamicZoneCreatesComponent(t *testing.T) {
	b, _ := newBuilder(t)
	navigate(t, b, navigation.OpenAddComponentsToDZ{ForTarget: schema.ModelContentType, TargetUID: article, DynamicZoneTarget: "blocks"})
	b.HandleChange("createComponent", true)
	b.HandleChange("componentToCreate.displayName", "Quote")
	b.HandleChange("componentToCreate.category", "blocks")

	out := submit(t, b, false)
	require.Equal(t, StatusCommitted, out.Status)
	assert.Equal(t, "blocks.quote", out.RedirectUID)
	assert.Equal(t, []string{"shared.seo", "blocks.quote"}, attribute(t, b, schema.ModelContentType, article, "blocks").Components())
	assert.Equal(t, "blocks.quote", b.Nav().TargetUID)
}

func TestRelationDraft(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeRelation})
	assert.Equal(t, article, b.State().ModifiedData["target"], "the first allowed target is preselected")

	b.HandleChange("relation", schema.RelationOneToMany)
	b.HandleChange("target", "api::author.author")
	st := b.State()
	assert.Equal(t, "author", st.ModifiedData["name"])
	assert.Equal(t, "article", st.ModifiedData["targetAttribute"])

	require.Equal(t, StatusCommitted, submit(t, b, false).Status)
	inverse := attribute(t, b, schema.ModelContentType, "api::author.author", "article")
	require.NotNil(t, inverse)
	assert.Equal(t, schema.RelationManyToOne, inverse.Relation())
}

func TestRelationInverseCollision(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeRelation})
	b.HandleChange("relation", schema.RelationOneToOne)
	b.HandleChange("target", "api::author.author")
	b.HandleChange("targetAttribute", "name")

	out := submit(t, b, false)
	assert.Equal(t, StatusInvalid, out.Status)
	assert.Contains(t, out.Errors, "targetAttribute")
}

func TestCreateContentType(t *testing.T) {
	b, _ := newBuilder(t)
	navigate(t, b, navigation.OpenCreateSchema{ModalType: navigation.ModalContentType, Kind: schema.KindSingle})
	assert.Equal(t, true, b.State().ModifiedData["draftAndPublish"])

	b.HandleChange("displayName", "Home Page")
	b.HandleChange("singularName", "home-page")
	b.HandleChange("pluralName", "home-pages")
	out := submit(t, b, false)

	require.Equal(t, StatusCommitted, out.Status)
	assert.Equal(t, "api::home-page.home-page", out.RedirectUID)
	ct, err := b.Registry().ContentType(out.RedirectUID)
	require.NoError(t, err)
	assert.Equal(t, schema.KindSingle, ct.Kind)
	assert.True(t, ct.Options.DraftAndPublish)
	assert.Equal(t, []string{out.RedirectUID}, b.Pending().Added)
}

func TestKindChangeRejectedWithRelations(t *testing.T) {
	b, rec := newBuilder(t)
	require.NoError(t, b.Registry().AddAttribute(schema.ModelContentType, article, schema.Attribute{
		"name": "author", "type": schema.TypeRelation, "relation": schema.RelationManyToOne,
		"target": "api::author.author", "targetAttribute": "articles",
	}))

	navigate(t, b, navigation.OpenEditSchema{ModalType: navigation.ModalContentType, TargetUID: article})
	assert.Equal(t, "Article", b.State().ModifiedData["displayName"])
	b.HandleChange("kind", string(schema.KindSingle))

	out := submit(t, b, false)
	assert.Equal(t, StatusRejected, out.Status)
	require.NotNil(t, rec.Last())
	assert.Equal(t, notifications.LevelDanger, rec.Last().Level)

	ct, err := b.Registry().ContentType(article)
	require.NoError(t, err)
	assert.Equal(t, schema.KindCollection, ct.Kind)
	assert.True(t, b.Nav().IsOpen)
}

func TestKindChangeAllowedWithoutRelations(t *testing.T) {
	b, _ := newBuilder(t)
	navigate(t, b, navigation.OpenEditSchema{ModalType: navigation.ModalContentType, TargetUID: "api::author.author"})
	b.HandleChange("kind", string(schema.KindSingle))

	require.Equal(t, StatusCommitted, submit(t, b, false).Status)
	ct, err := b.Registry().ContentType("api::author.author")
	require.NoError(t, err)
	assert.Equal(t, schema.KindSingle, ct.Kind)
}

func TestComponentModal(t *testing.T) {
	b, _ := newBuilder(t)
	navigate(t, b, navigation.OpenCreateSchema{ModalType: navigation.ModalComponent})
	b.HandleChange("displayName", "Card")
	b.HandleChange("category", "ui")
	out := submit(t, b, false)
	require.Equal(t, StatusCommitted, out.Status)
	assert.Equal(t, "ui.card", out.RedirectUID)

	navigate(t, b, navigation.OpenEditSchema{ModalType: navigation.ModalComponent, TargetUID: "ui.card"})
	assert.Equal(t, "ui", b.State().ModifiedData["category"])
	b.HandleChange("displayName", "Tile")
	out = submit(t, b, false)
	require.Equal(t, StatusCommitted, out.Status)
	assert.Equal(t, "ui.tile", out.RedirectUID, "unsaved components follow their display name")
	assert.True(t, b.Registry().Exists(schema.ModelComponent, "ui.tile"))
}

func TestCustomFieldModal(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectCustomField{CustomFieldUID: "plugin::color-picker.color", AttributeType: schema.TypeString})
	assert.NotEmpty(t, b.State().ModifiedData["regex"], "field defaults are applied")

	b.HandleChange("name", "accent")
	b.HandleChange("default", "orange")
	out := submit(t, b, false)
	require.Equal(t, StatusInvalid, out.Status)
	assert.Contains(t, out.Errors, "default")

	b.HandleChange("default", "#ff8800")
	require.Equal(t, StatusCommitted, submit(t, b, false).Status)
	assert.Equal(t, "plugin::color-picker.color", attribute(t, b, schema.ModelContentType, article, "accent").CustomField())
}

func TestBackResetsTheDraft(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeText})
	b.HandleChange("name", "subtitle")

	navigate(t, b, navigation.Back{})
	assert.Equal(t, navigation.ModalChooseAttribute, b.Nav().ModalType)
	assert.Empty(t, b.State().ModifiedData)
}

func TestTabChangeKeepsTheDraft(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeText})
	b.HandleChange("name", "subtitle")

	navigate(t, b, navigation.SetActiveTab{Tab: navigation.TabAdvanced})
	assert.Equal(t, "subtitle", b.State().ModifiedData["name"])
}

func TestUnhandledNavigationIsIgnored(t *testing.T) {
	b, _ := newBuilder(t)
	_, err := b.Navigate(navigation.NavigateToCreateComponentStep2{})
	assert.ErrorIs(t, err, navigation.ErrUnhandledTransition)
	assert.False(t, b.Nav().IsOpen)

	out := submit(t, b, false)
	assert.Equal(t, StatusNoop, out.Status)
}

func TestSecondSubmitWhileValidating(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeText})
	b.HandleChange("name", "subtitle")

	var nested error
	b.beforeValidate = func() {
		_, nested = b.Submit(context.Background(), false)
	}
	out := submit(t, b, false)

	assert.ErrorIs(t, nested, ErrSubmitInProgress)
	assert.Equal(t, StatusCommitted, out.Status)
}

func TestDraftChangedDuringValidation(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeText})
	b.HandleChange("name", "subtitle")

	b.beforeValidate = func() { b.HandleChange("name", "other") }
	out := submit(t, b, false)
	assert.Equal(t, StatusNoop, out.Status)
	assert.Nil(t, attribute(t, b, schema.ModelContentType, article, "subtitle"))
}

func TestSubmitHonoursCancellation(t *testing.T) {
	b, _ := newBuilder(t)
	openPicker(t, b)
	navigate(t, b, navigation.SelectField{AttributeType: schema.TypeText})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Submit(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseWithoutChanges(t *testing.T) {
	b, _ := newBuilder(t)
	navigate(t, b, navigation.OpenEditSchema{ModalType: navigation.ModalContentType, TargetUID: article})
	require.NoError(t, b.Close(false))
	assert.False(t, b.Nav().IsOpen)
	assert.Empty(t, b.State().ModifiedData)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "needs_confirmation", StatusNeedsConfirmation.String())
	assert.Equal(t, "unknown", Status(99).String())
}
