package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-graph/backend/internal/graph"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sampleMindMap.ts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_NoArgumentsPrintsUsage(t *testing.T) {
	var out bytes.Buffer

	code := run(nil, &out)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Usage: import")
	assert.Contains(t, out.String(), "-dry-run")
}

func TestRun_UnknownFlag(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 2, run([]string{"-bogus"}, &out))
}

func TestRun_DryRun(t *testing.T) {
	path := writeSource(t, `import type { MindMap } from './types';

export const sampleMindMap = { rootNode: { id: 'root', title: 'Home', url: '/home', children: [ { id: 'a', title: 'A', url: '/a', isExpandable: true } ] } }
`)
	var out bytes.Buffer

	code := run([]string{"-dry-run", path}, &out)

	require.Equal(t, 0, code, out.String())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `NODE root title="Home" url="/home" properties={}`, lines[0])
	assert.Equal(t, `NODE a title="A" url="/a" properties={"isExpandable":true}`, lines[1])
	assert.Equal(t, `EDGE root -[CONTAINS]-> a`, lines[2])
	assert.Equal(t, "2 nodes, 1 relationships (strict decode)", lines[3])
}

func TestRun_DryRunCustomMarker(t *testing.T) {
	path := writeSource(t, `export const siteMap = { rootNode: { id: 'r', title: "Reviewer's Desk" } }`)
	var out bytes.Buffer

	code := run([]string{"-dry-run", "-marker", "export const siteMap", path}, &out)

	require.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "NODE r")
	assert.Contains(t, out.String(), "(fallback decode)")
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing marker", `const somethingElse = {}`},
		{"unbalanced braces", `export const sampleMindMap = { rootNode: { id: 'root' }`},
		{"no root node", `export const sampleMindMap = { nodes: [] }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, 1, run([]string{"-dry-run", writeSource(t, tt.source)}, &out))
		})
	}

	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{"-dry-run", filepath.Join(t.TempDir(), "missing.ts")}, &out))
}

func TestRun_DryRunCollapsesDuplicateIDs(t *testing.T) {
	path := writeSource(t, `export const sampleMindMap = { rootNode: { id: 'root', title: 'Home', children: [ { id: 'dup', title: 'First' }, { id: 'dup', title: 'Second' } ] } }`)
	var out bytes.Buffer

	require.Equal(t, 0, run([]string{"-dry-run", path}, &out), out.String())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		`NODE root title="Home" url="" properties={}`,
		`NODE dup title="Second" url="" properties={}`,
		`EDGE root -[CONTAINS]-> dup`,
		`3 nodes, 2 relationships (strict decode)`,
	}, lines)
}

func TestPrintGraph(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	require.NoError(t, store.UpsertNode(ctx, graph.NavigationNode{ID: "root", Title: "Home", Properties: "{}"}))
	require.NoError(t, store.UpsertNode(ctx, graph.NavigationNode{ID: "x", Title: "X", URL: "/x", Properties: "{}"}))
	require.NoError(t, store.UpsertEdge(ctx, graph.Relationship{SourceID: "root", TargetID: "x", Type: "CONTAINS"}))

	var out bytes.Buffer
	printGraph(&out, store)

	assert.Equal(t, "NODE root title=\"Home\" url=\"\" properties={}\nNODE x title=\"X\" url=\"/x\" properties={}\nEDGE root -[CONTAINS]-> x\n", out.String())
}
