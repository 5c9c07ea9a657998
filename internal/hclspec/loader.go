// Package hclspec loads workspace description files written in HCL and
// translates them into the format-agnostic model the planner consumes.
//
// A workspace is one or more *.hcl files under a root directory. Phase
// blocks define the shared phase vocabulary and its ordering rules; project
// blocks define buildable units, their inter-project dependencies and their
// per-phase run settings:
//
//	phase "build" {
//	  after          = ["codegen"]
//	  upstream_after = ["build"]
//	}
//
//	project "api" {
//	  dir        = "services/api"
//	  depends_on = ["lib"]
//
//	  run "build" {
//	    command = "make build"
//	    shards  = 3
//	  }
//	}
package hclspec

import (
	"context"
	"fmt"
	"io/fs"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/monogridgo/internal/ctxlog"
	"github.com/vk/monogridgo/internal/model"
)

// hclWorkspaceFile is the top-level structure of a workspace file for decoding.
type hclWorkspaceFile struct {
	Phases   []*hclPhase   `hcl:"phase,block"`
	Projects []*hclProject `hcl:"project,block"`
}

type hclPhase struct {
	Name          string   `hcl:"name,label"`
	After         []string `hcl:"after,optional"`
	UpstreamAfter []string `hcl:"upstream_after,optional"`
}

type hclProject struct {
	Name      string    `hcl:"name,label"`
	Dir       string    `hcl:"dir,optional"`
	DependsOn []string  `hcl:"depends_on,optional"`
	Runs      []*hclRun `hcl:"run,block"`
}

type hclRun struct {
	Phase   string            `hcl:"phase,label"`
	Command string            `hcl:"command,optional"`
	Env     map[string]string `hcl:"env,optional"`
	// Shards stays an expression so a missing attribute and an invalid one
	// can be told apart during translation.
	Shards hcl.Expression `hcl:"shards,optional"`
}

// Load discovers every *.hcl file under path, parses them and returns the
// consolidated, validated workspace model. path may also name a single file.
func Load(ctx context.Context, path string) (*model.Workspace, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading workspace.", "path", path)

	files, err := findWorkspaceFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to find workspace files in %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl workspace files found under %s", path)
	}

	root := path
	if len(files) == 1 && files[0] == path {
		root = filepath.Dir(path)
	}
	ws := model.NewWorkspace(root)

	parser := hclparse.NewParser()
	for _, file := range files {
		if err := loadFile(ws, file, parser); err != nil {
			return nil, err
		}
	}

	if err := ws.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workspace: %w", err)
	}
	logger.Debug("Workspace loaded.", "projects", len(ws.Projects), "phases", len(ws.Phases))
	return ws, nil
}

// loadFile parses a single HCL file and merges its blocks into the workspace.
func loadFile(ws *model.Workspace, filePath string, parser *hclparse.Parser) error {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse %s: %w", filePath, diags)
	}

	var parsed hclWorkspaceFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return fmt.Errorf("failed to decode %s: %w", filePath, diags)
	}

	for _, ph := range parsed.Phases {
		if _, exists := ws.Phases[ph.Name]; exists {
			return fmt.Errorf("duplicate phase %q in %s", ph.Name, filePath)
		}
		ws.Phases[ph.Name] = &model.Phase{
			Name:          ph.Name,
			After:         ph.After,
			UpstreamAfter: ph.UpstreamAfter,
		}
	}

	for _, pr := range parsed.Projects {
		if _, exists := ws.Projects[pr.Name]; exists {
			return fmt.Errorf("duplicate project %q in %s", pr.Name, filePath)
		}
		project, err := translateProject(pr, filePath)
		if err != nil {
			return err
		}
		ws.Projects[pr.Name] = project
	}
	return nil
}

// translateProject converts an HCL project block into the model.
func translateProject(pr *hclProject, filePath string) (*model.Project, error) {
	dir := pr.Dir
	if dir == "" {
		dir = pr.Name
	}
	project := &model.Project{
		Name:      pr.Name,
		Dir:       dir,
		DependsOn: pr.DependsOn,
		Runs:      make(map[string]*model.Run, len(pr.Runs)),
	}
	for _, run := range pr.Runs {
		if _, exists := project.Runs[run.Phase]; exists {
			return nil, fmt.Errorf("project %q has duplicate run block for phase %q in %s", pr.Name, run.Phase, filePath)
		}
		shards, err := evalShards(run.Shards)
		if err != nil {
			return nil, fmt.Errorf("project %q, phase %q: %w", pr.Name, run.Phase, err)
		}
		project.Runs[run.Phase] = &model.Run{
			Phase:   run.Phase,
			Command: run.Command,
			Env:     run.Env,
			Shards:  shards,
		}
	}
	return project, nil
}

// evalShards statically evaluates the optional shards attribute. The
// attribute must be a non-negative whole number; absence means unsharded.
func evalShards(expr hcl.Expression) (int, error) {
	if expr == nil {
		return 0, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, fmt.Errorf("invalid shards expression: %w", diags)
	}
	if val.IsNull() {
		return 0, nil
	}
	if val.Type() != cty.Number {
		return 0, fmt.Errorf("shards must be a number, got %s", val.Type().FriendlyName())
	}
	count, acc := val.AsBigFloat().Int64()
	if acc != big.Exact {
		return 0, fmt.Errorf("shards must be a whole number, got %s", val.AsBigFloat().Text('f', -1))
	}
	if count < 0 {
		return 0, fmt.Errorf("shards must not be negative, got %d", count)
	}
	return int(count), nil
}

// findWorkspaceFiles returns path itself if it is an .hcl file, otherwise
// every .hcl file under it, in walk order.
func findWorkspaceFiles(path string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
