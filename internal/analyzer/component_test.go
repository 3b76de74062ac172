package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/svelte-expert/internal/analyzer"
)

const svelte4Component = `<script>
  import { onMount, createEventDispatcher } from 'svelte';
  import { writable } from 'svelte/store';

  export let title = 'Hello';
  export let count;

  const dispatch = createEventDispatcher();

  onMount(async () => {
    const res = await fetch('/api/items');
  });

  function select() {
    dispatch('select', { title });
    dispatch("close");
  }
</script>

<h1 on:click={select}>{title}</h1>

<style>
  h1 { color: red; }
</style>
`

func TestAnalyzeComponentSvelte4(t *testing.T) {
	a := analyzer.AnalyzeComponent(svelte4Component)

	assert.Equal(t, "4", a.SvelteVersion)
	assert.Equal(t, []string{"title", "count"}, a.Props)
	assert.Equal(t, []string{"select", "close"}, a.Events)
	assert.Equal(t, []string{"writable"}, a.Stores)
	assert.True(t, a.HasStyle)
	assert.Equal(t, []string{"Component dispatches events."}, a.Notes)
	assert.Len(t, a.Imports, 2)
	assert.Equal(t, []string{"export let title", "export let count"}, a.Exports)
	assert.Equal(t, []string{
		`Consider using TypeScript for better type safety with <script lang="ts">.`,
		"Consider using SvelteKit's data loading pattern with load() functions instead of fetch() in onMount().",
	}, a.Suggestions)
}

func TestAnalyzeComponentSvelte5(t *testing.T) {
	a := analyzer.AnalyzeComponent(`<script lang="ts">
  let count = $state(0);
  const doubled = $derived(count * 2);
</script>`)

	assert.Equal(t, "5", a.SvelteVersion)
	assert.Empty(t, a.Props)
	assert.Empty(t, a.Events)
	assert.Empty(t, a.Suggestions)
	assert.False(t, a.HasStyle)
}

func TestComponentFindingsOrder(t *testing.T) {
	f := analyzer.AnalyzeComponent(svelte4Component).Findings()

	assert.Equal(t, []string{"version", "props", "events", "stores", "notes", "suggestions"}, f.Categories())
	assert.Equal(t, []string{"title", "count"}, f.Items("props"))
	assert.False(t, f.Empty())

	var empty analyzer.Findings
	empty.Add("props")
	assert.True(t, empty.Empty())
}

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		version string
		notes   int
	}{
		{name: "svelte 4 reactive", code: "$: doubled = count * 2", version: "4"},
		{name: "svelte 4 store file", code: "import { user } from './store.js'", version: "4"},
		{name: "app stores excluded", code: "import { page } from '$app/stores/store.js'", version: "unknown"},
		{name: "svelte 5", code: "let x = $state(1); $effect(() => {})", version: "5"},
		{name: "mixed", code: "$: y = 2\nlet x = $state(1)", version: "mixed", notes: 3},
		{name: "unknown", code: "<p>static</p>", version: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := analyzer.DetectVersion(tt.code)
			assert.Equal(t, tt.version, r.Version)
			assert.Len(t, r.Notes, tt.notes)
		})
	}
}

func TestUpgradeGuidance(t *testing.T) {
	g := analyzer.UpgradeGuidance("$: a = b\nimport { writable } from 'svelte/store'\nafterUpdate(() => {})")
	assert.Len(t, g, 3)
	assert.Empty(t, analyzer.UpgradeGuidance("let x = $state(0)"))
}
