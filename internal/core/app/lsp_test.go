package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"crateview/internal/lspconv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func TestPublishDiagnostics(t *testing.T) {
	a, _ := newApp(t, map[string]string{
		"src/lib.rs": "mod foo;\n",
	})

	params, err := a.PublishDiagnostics(context.Background())
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.True(t, strings.HasSuffix(string(params[0].URI), "/src/lib.rs"), string(params[0].URI))
	require.Len(t, params[0].Diagnostics, 1)
	d := params[0].Diagnostics[0]
	assert.Equal(t, protocol.Position{Line: 0, Character: 4}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 0, Character: 7}, d.Range.End)
	assert.Equal(t, lspconv.Source, d.Source)
}

func TestCodeActionsAtModuleDeclaration(t *testing.T) {
	a, root := newApp(t, map[string]string{
		"src/lib.rs": "mod foo;\nstruct S;\n",
	})
	lib := filepath.Join(root, "src", "lib.rs")

	actions, err := a.CodeActions(context.Background(), lib, "1:5")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "create module", actions[0].Title)
	assert.Equal(t, protocol.QuickFix, actions[0].Kind)
	require.NotNil(t, actions[0].Command)
	assert.Equal(t, lspconv.ApplyCommand, actions[0].Command.Command)

	actions, err = a.CodeActions(context.Background(), lib, "2:8")
	require.NoError(t, err)
	require.NotEmpty(t, actions)
	for _, action := range actions {
		assert.Equal(t, protocol.RefactorRewrite, action.Kind)
	}
}

func TestWorkspaceSymbols(t *testing.T) {
	a, _ := newApp(t, map[string]string{
		"src/lib.rs": "fn alpha() {}\nstruct Beta;\n",
	})

	infos, err := a.WorkspaceSymbols(context.Background(), SearchRequest{Name: "Beta", Mode: "exact"})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "Beta", infos[0].Name)
	assert.Equal(t, protocol.SymbolKindStruct, infos[0].Kind)
	assert.Equal(t, uint32(1), infos[0].Location.Range.Start.Line)
}
