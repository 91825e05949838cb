package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/relations"
	"github.com/jontk/ctb/internal/version"
)

const articleUID = "api::article.article"

// resetFlags puts every flag back to its default; the flag variables are
// package globals shared by consecutive executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

type workspace struct {
	dir    string
	config string
	schema string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	ws := &workspace{
		dir:    dir,
		config: filepath.Join(dir, "ctb.yaml"),
		schema: filepath.Join(dir, "schema.yaml"),
	}

	out, err := run(t, "init", "--non-interactive", "--template", "ci", "--path", ws.config)
	require.NoError(t, err, out)
	require.FileExists(t, ws.schema)
	return ws
}

// ctb runs a command against the workspace configuration
func (ws *workspace) ctb(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return run(t, append(args, "--config", ws.config)...)
}

func (ws *workspace) must(t *testing.T, args ...string) string {
	t.Helper()
	out, err := ws.ctb(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)

	out, err = run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "ctb version "+version.Version)
	assert.Contains(t, out, "Schema format: "+version.SchemaFormat)
}

func TestInitListTemplates(t *testing.T) {
	out, err := run(t, "init", "--list-templates")
	require.NoError(t, err)
	for _, name := range []string{"ci", "default", "team"} {
		assert.Contains(t, out, name)
	}
}

func TestInitKeepsExistingConfig(t *testing.T) {
	ws := newWorkspace(t)
	before, err := os.ReadFile(ws.config)
	require.NoError(t, err)

	out, err := run(t, "init", "--non-interactive", "--template", "team", "--path", ws.config)
	require.NoError(t, err)
	assert.Contains(t, out, "--force")

	after, err := os.ReadFile(ws.config)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestContentTypeCommands(t *testing.T) {
	ws := newWorkspace(t)

	out := ws.must(t, "content-type", "create", "Article")
	assert.Contains(t, out, "Created collection type "+articleUID)

	out = ws.must(t, "ct", "create", "Home Page", "--single", "--no-draft-and-publish")
	assert.Contains(t, out, "Created single type api::home-page.home-page")

	out = ws.must(t, "schema", "list")
	assert.Contains(t, out, articleUID)
	assert.Contains(t, out, "Collection Type")
	assert.Contains(t, out, "Single Type")

	out = ws.must(t, "schema", "show", "api::home-page.home-page")
	assert.Contains(t, out, "Draft & publish: false")
	assert.Contains(t, out, "No attributes yet.")

	_, err := ws.ctb(t, "content-type", "create", "Article")
	assert.Error(t, err, "duplicate content types are refused")

	ws.must(t, "content-type", "edit", articleUID, "--display-name", "Post")
	out = ws.must(t, "schema", "show", articleUID)
	assert.Contains(t, out, "Post ("+articleUID+")")

	ws.must(t, "content-type", "delete", "api::home-page.home-page")
	out = ws.must(t, "schema", "list", "--content-types")
	assert.NotContains(t, out, "home-page")
}

func TestSchemaExport(t *testing.T) {
	ws := newWorkspace(t)
	ws.must(t, "content-type", "create", "Article")
	ws.must(t, "attribute", "add", articleUID, "text", "title", "--set", "required=true")

	out := ws.must(t, "schema", "export", "--format", "csv")
	assert.Contains(t, out, "Entity,Entity type,Attribute,Type,Details")
	assert.Contains(t, out, articleUID+",Collection Type,title,String,required")

	out = ws.must(t, "schema", "export", "--entities", "-f", "md")
	assert.Contains(t, out, "| UID | Name | Type | Attributes |")
	assert.Contains(t, out, "| "+articleUID+" | Article | Collection Type | 1 |")

	path := filepath.Join(ws.dir, "docs", "model.html")
	out = ws.must(t, "schema", "export", "--format", "html", "--output", path)
	assert.Contains(t, out, "Exported 1 rows to "+path)
	assert.FileExists(t, path)

	_, err := ws.ctb(t, "schema", "export", "--format", "pdf")
	assert.Error(t, err)
}

func TestAttributeCommands(t *testing.T) {
	ws := newWorkspace(t)
	ws.must(t, "content-type", "create", "Article")

	ws.must(t, "attribute", "add", articleUID, "text", "title", "--set", "required=true", "--set", "maxLength=80")
	ws.must(t, "attribute", "add", articleUID, "enumeration", "status", "--set", "enum=draft,published")
	ws.must(t, "attr", "add", articleUID, "text", "note", "--visible-when", "status==draft")

	out := ws.must(t, "schema", "show", articleUID)
	assert.Contains(t, out, "required")
	assert.Contains(t, out, "draft | published")
	assert.Contains(t, out, "visible when status == draft")

	t.Run("numeric constraints are saved as numbers", func(t *testing.T) {
		data, err := os.ReadFile(ws.schema)
		require.NoError(t, err)
		assert.Contains(t, string(data), "maxLength: 80\n")
		assert.NotContains(t, string(data), `maxLength: "80"`)
	})

	t.Run("invalid draft", func(t *testing.T) {
		out, err := ws.ctb(t, "attribute", "add", articleUID, "text", "title")
		require.Error(t, err)
		assert.Contains(t, out, "name:")
	})

	t.Run("breaking rename needs confirmation", func(t *testing.T) {
		out, err := ws.ctb(t, "attribute", "edit", articleUID, "status", "--rename", "state")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeAborted))
		assert.Contains(t, err.Error(), "--confirm")
		assert.Contains(t, out, "note")

		out = ws.must(t, "schema", "show", articleUID)
		assert.Contains(t, out, "status")

		ws.must(t, "attribute", "edit", articleUID, "status", "--rename", "state", "--confirm")
		out = ws.must(t, "schema", "show", articleUID, "--yaml")
		assert.Contains(t, out, "name: state")
	})

	t.Run("delete", func(t *testing.T) {
		ws.must(t, "attribute", "delete", articleUID, "title")
		out := ws.must(t, "schema", "show", articleUID, "--yaml")
		assert.NotContains(t, out, "name: title")
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, err := ws.ctb(t, "attribute", "add", "api::missing.missing", "text", "title")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ctb schema list")
	})
}

func TestRelationCommands(t *testing.T) {
	ws := newWorkspace(t)
	ws.must(t, "content-type", "create", "Article")
	ws.must(t, "content-type", "create", "Author")

	ws.must(t, "attribute", "add", articleUID, "relation", "writer",
		"--set", "relation=manyToOne", "--set", "target=api::author.author")

	out := ws.must(t, "schema", "show", "api::author.author")
	assert.Contains(t, out, "oneToMany → "+articleUID+".writer")

	_, err := ws.ctb(t, "content-type", "edit", articleUID, "--kind", "singleType")
	require.Error(t, err, "kind changes are refused with two-way relations")

	out = ws.must(t, "schema", "show", articleUID)
	assert.Contains(t, out, "Kind: Collection Type")
}

func TestRelationPreview(t *testing.T) {
	ws := newWorkspace(t)
	ws.must(t, "content-type", "create", "Article")
	ws.must(t, "content-type", "create", "Category", "--plural", "categories")
	ws.must(t, "attribute", "add", articleUID, "relation", "tags",
		"--set", "relation=manyToMany", "--set", "target=api::category.category")
	ws.must(t, "attribute", "add", articleUID, "text", "title")

	entries := filepath.Join(ws.dir, "entries.yaml")
	require.NoError(t, os.WriteFile(entries, []byte(`api::category.category:
  - id: "1"
    label: Music
  - id: "2"
    label: Movies
  - id: "3"
    label: Books
    status: draft
`), 0o600))

	t.Run("search skips connected entries", func(t *testing.T) {
		out := ws.must(t, "relation", "search", articleUID, "tags", "--entries", entries, "--loaded", "1", "--search", "o")
		assert.Contains(t, out, "Movies")
		assert.Contains(t, out, "Books")
		assert.NotContains(t, out, "Music")
		assert.Contains(t, out, "Page 1 of 1 (2 entries)")
	})

	t.Run("payload", func(t *testing.T) {
		out := ws.must(t, "relation", "payload", articleUID, "tags", "--entries", entries,
			"--loaded", "1,2", "--disconnect", "2", "--connect", "3", "--move", "2:1")

		var p relations.Payload
		require.NoError(t, json.Unmarshal([]byte(out), &p))
		assert.Equal(t, relations.Payload{
			Connect: []relations.Connection{
				{ID: "3", Position: &relations.Position{Start: true}},
				{ID: "1", Position: &relations.Position{After: "3"}},
			},
			Disconnect: []relations.Disconnection{{ID: "2"}},
		}, p)
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"not a relation", []string{"relation", "payload", articleUID, "title", "--entries", entries}, "not a relation"},
		{"unknown attribute", []string{"relation", "payload", articleUID, "missing", "--entries", entries}, "no attribute"},
		{"unknown entry", []string{"relation", "payload", articleUID, "tags", "--entries", entries, "--connect", "9"}, "no entry 9"},
		{"bad move", []string{"relation", "payload", articleUID, "tags", "--entries", entries, "--loaded", "1", "--move", "1-2"}, "from:to"},
		{"disconnect unconnected", []string{"relation", "payload", articleUID, "tags", "--entries", entries, "--disconnect", "1"}, "not connected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ws.ctb(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestComponentCommands(t *testing.T) {
	ws := newWorkspace(t)
	ws.must(t, "content-type", "create", "Article")

	out := ws.must(t, "component", "create", "Seo", "--category", "shared", "--icon", "search")
	assert.Contains(t, out, "shared.seo")

	_, err := ws.ctb(t, "component", "create", "Card")
	require.Error(t, err, "--category is required")

	ws.must(t, "attribute", "add", articleUID, "component", "seo", "--component", "shared.seo")
	out = ws.must(t, "attribute", "add", articleUID, "component", "hero",
		"--create-component", "Hero", "--category", "sections", "--repeatable")
	assert.Contains(t, out, "Created component sections.hero")

	ws.must(t, "attribute", "add", articleUID, "dynamiczone", "blocks", "--set", "components=shared.seo")
	ws.must(t, "attribute", "add-components", articleUID, "blocks", "sections.hero")

	out = ws.must(t, "schema", "show", articleUID)
	assert.Contains(t, out, "sections.hero (repeatable)")
	assert.Contains(t, out, "shared.seo, sections.hero")

	out = ws.must(t, "schema", "list", "--components")
	assert.Contains(t, out, "Component (sections)")
	assert.NotContains(t, out, articleUID)

	ws.must(t, "component", "delete", "shared.seo")
	out = ws.must(t, "schema", "show", articleUID, "--yaml")
	assert.NotContains(t, out, "shared.seo")
}

func TestValidate(t *testing.T) {
	ws := newWorkspace(t)
	ws.must(t, "content-type", "create", "Article")
	ws.must(t, "attribute", "add", articleUID, "text", "title")

	out := ws.must(t, "validate")
	assert.Contains(t, out, "is valid (1 content types, 0 components)")

	broken := `version: v1.0.0
contentTypes:
  - uid: api::post.post
    info:
      displayName: Post
    attributes:
      - name: author
        type: relation
        relation: manyToOne
        target: api::ghost.ghost
        targetAttribute: posts
      - name: hero
        type: component
        component: sections.missing
      - name: rating
        type: integer
        min: 10
        max: 1
components: []
`
	require.NoError(t, os.WriteFile(ws.schema, []byte(broken), 0o600))

	out, err := ws.ctb(t, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "api::post.post.author: relation target api::ghost.ghost does not exist")
	assert.Contains(t, out, "api::post.post.hero: component sections.missing does not exist")
	assert.Contains(t, out, "api::post.post.rating: min:")
}

func TestConfigCommands(t *testing.T) {
	ws := newWorkspace(t)

	out := ws.must(t, "config", "path")
	assert.Equal(t, ws.config+"\n", out)

	out = ws.must(t, "config", "show")
	assert.Contains(t, out, "Config file: "+ws.config)
	assert.Contains(t, out, "Schema file: "+ws.schema)
	assert.Contains(t, out, "log.level")
	assert.Contains(t, out, "warn")

	out = ws.must(t, "config", "validate")
	assert.Contains(t, out, "Configuration is valid")
}

func TestSchemaOverride(t *testing.T) {
	ws := newWorkspace(t)
	other := filepath.Join(ws.dir, "other.yaml")

	ws.must(t, "content-type", "create", "Article", "--schema", other)
	require.FileExists(t, other)

	out := ws.must(t, "schema", "list")
	assert.Contains(t, out, "No entities")

	out = ws.must(t, "schema", "list", "--schema", other)
	assert.Contains(t, out, articleUID)
}

func TestParseSet(t *testing.T) {
	tests := []struct {
		in      string
		key     string
		value   any
		wantErr bool
	}{
		{in: "required=true", key: "required", value: true},
		{in: "maxLength=80", key: "maxLength", value: 80},
		{in: "min=1.5", key: "min", value: 1.5},
		{in: "max=-3", key: "max", value: -3},
		{in: "minLength=", key: "minLength", value: ""},
		{in: "max=ten", key: "max", value: "ten"},
		{in: "enum=a, b,,c", key: "enum", value: []string{"a", "b", "c"}},
		{in: "componentToCreate.icon=star", key: "componentToCreate.icon", value: "star"},
		{in: "default=", key: "default", value: ""},
		{in: "regex=^a=b$", key: "regex", value: "^a=b$"},
		{in: "novalue", wantErr: true},
		{in: "=x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, value, err := parseSet(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestParseCondition(t *testing.T) {
	cond, err := parseCondition(" status == draft ")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"visible": map[string]any{"==": []any{map[string]any{"var": "status"}, "draft"}}}, cond)

	cond, err = parseCondition("featured!=true")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"visible": map[string]any{"!=": []any{map[string]any{"var": "featured"}, true}}}, cond)

	_, err = parseCondition("status")
	assert.Error(t, err)
}

func TestTableRender(t *testing.T) {
	tbl := newTable("UID", "NAME")
	tbl.add("api::a.a", "日本語")
	tbl.add("api::longer.longer", "x")

	var buf bytes.Buffer
	tbl.render(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "UID                 NAME", lines[0])
	assert.Equal(t, "api::a.a            日本語", lines[1])
	assert.Equal(t, "api::longer.longer  x", lines[2])

	assert.Equal(t, maxCellWidth, len([]rune(truncate(strings.Repeat("a", 100)))))
}
