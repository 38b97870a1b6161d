package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/cache"
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/session"
)

const testProjectYAML = `name: checkout
categories:
  - id: auth
    label: Auth
    color: "#3b82f6"
  - id: pay
    color: "#10b981"
nodes:
  - id: login
    title: Login
    epic: auth
    notes: rate limited
  - id: cart
    title: Cart
    epic: pay
  - id: done
    title: Done
edges:
  - from: login
    to: cart
    label: ok
  - from: cart
    to: done
    dashed: true
`

func writeProject(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkout.yaml")
	if err := os.WriteFile(path, []byte(testProjectYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"overview", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("svg, png,,json")
	if err != nil {
		t.Fatalf("ParseFormats: %v", err)
	}
	if strings.Join(got, ",") != "svg,png,json" {
		t.Errorf("ParseFormats = %v", got)
	}
	if _, err := ParseFormats("svg,gif"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestExtension(t *testing.T) {
	for format, want := range map[string]string{
		FormatSVG:      "svg",
		FormatOverview: "overview.svg",
		FormatJSON:     "scene.json",
	} {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Path: "board.json"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Strategy != "flow" || opts.CanvasW != 10000 || opts.GapY != 40 {
		t.Errorf("layout defaults not applied: %+v", opts)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG || opts.Scale != DefaultScale {
		t.Errorf("render defaults not applied: %+v", opts)
	}
	if opts.Logger == nil {
		t.Error("logger default not applied")
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no source", Options{}, errors.ErrCodeInvalidInput},
		{"bad strategy", Options{Path: "b.json", Strategy: "spiral"}, errors.ErrCodeInvalidStrategy},
		{"bad format", Options{Path: "b.json", Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad scale", Options{Path: "b.json", Scale: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil, nil)
	opts := Options{Path: writeProject(t), Formats: []string{FormatSVG, FormatDOT, FormatJSON}}

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Project.Name != "checkout" {
		t.Errorf("project name = %q", result.Project.Name)
	}
	if result.Stats.NodeCount != 3 || result.Stats.EdgeCount != 2 || result.Stats.RouteCount != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if len(result.Positions) != 3 {
		t.Errorf("positions = %v", result.Positions)
	}
	for _, f := range opts.Formats {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("missing artifact %s", f)
		}
	}
	if !strings.Contains(string(result.Artifacts[FormatSVG]), "rate limited") {
		t.Error("notes should be rendered by default")
	}
	if !strings.Contains(string(result.Artifacts[FormatDOT]), `"login" -> "cart"`) {
		t.Error("DOT should contain the login edge")
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", result.CacheInfo)
	}

	again, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute again: %v", err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", again.CacheInfo)
	}
	if string(again.Artifacts[FormatSVG]) != string(result.Artifacts[FormatSVG]) {
		t.Error("cached SVG differs")
	}

	opts.Refresh = true
	fresh, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.LayoutHit || fresh.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestExecuteStrategyChangesLayout(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil, nil)
	path := writeProject(t)

	flow, err := runner.Execute(ctx, Options{Path: path, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	grid, err := runner.Execute(ctx, Options{Path: path, Strategy: "grid", Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if flow.Positions["done"] == grid.Positions["done"] {
		t.Error("grid and flow should place nodes differently")
	}
}

func TestExecuteRestore(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	saved := &session.State{
		Project:   "checkout",
		Positions: map[string]board.Point{"login": {X: 10, Y: 20}},
		Hidden:    []string{"pay"},
		HideNotes: true,
	}
	if err := store.Save(ctx, "checkout", saved); err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(nil, nil, store, nil)
	path := writeProject(t)

	result, err := runner.Execute(ctx, Options{Path: path, Restore: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Positions["login"] != (board.Point{X: 10, Y: 20}) {
		t.Errorf("restored position = %v", result.Positions["login"])
	}
	if len(result.Scene.Routes) != 0 {
		t.Errorf("hidden category should hide both edges, got %d routes", len(result.Scene.Routes))
	}
	if strings.Contains(string(result.Artifacts[FormatSVG]), "rate limited") {
		t.Error("saved HideNotes should hide notes")
	}

	plain, err := runner.Execute(ctx, Options{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if len(plain.Scene.Routes) != 2 {
		t.Error("without restore the saved state is ignored")
	}

	st, _ := store.Load(ctx, "checkout")
	if st.Strategy != "" || len(st.Positions) != 1 {
		t.Error("batch runs must not write back to the store")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	runner := NewRunner(nil, nil, store, nil)
	opts := Options{Path: writeProject(t)}

	s, err := runner.Open(ctx, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.MoveNode(ctx, "cart", board.Point{X: 700, Y: 500}); err != nil {
		t.Fatal(err)
	}

	reopened, err := runner.Open(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := reopened.Position("cart"); p != (board.Point{X: 700, Y: 500}) {
		t.Errorf("reopened position = %v", p)
	}
}

func TestExecuteInvalidProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	data := `{"name":"broken","nodes":[{"id":"a"}],"edges":[{"from":"a","to":"ghost"}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := NewRunner(nil, nil, nil, nil).Execute(context.Background(), Options{Path: path})
	if !errors.Is(err, errors.ErrCodeInvalidProject) {
		t.Errorf("error = %v, want INVALID_PROJECT", err)
	}
}
