// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads and normalizes api-extractor-compatible build
// configuration: extends chains, path token substitution, and the
// missing-release-tag policy.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/petar-djukic/dts-augment/pkg/types"
)

var (
	// ErrConfigCycle indicates an extends chain that revisits a config file.
	ErrConfigCycle = errors.New("config extends cycle")

	// ErrNoEntryPoint indicates a merged config without mainEntryPointFilePath.
	ErrNoEntryPoint = errors.New("mainEntryPointFilePath is not set")
)

const (
	projectFolderToken    = "<projectFolder>"
	missingReleaseTagRule = "ae-missing-release-tag"
)

// LogLevel is the severity assigned to missing-release-tag diagnostics.
type LogLevel int

const (
	LevelNone LogLevel = iota
	LevelVerbose
	LevelInfo
	LevelWarning
	LevelError
)

// String returns the config-file spelling of the level.
func (l LogLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "none"
	}
}

// parseLogLevel maps a config string to a LogLevel. Unrecognized strings
// degrade to LevelNone rather than failing the load.
func parseLogLevel(s string) LogLevel {
	switch s {
	case "verbose":
		return LevelVerbose
	case "info":
		return LevelInfo
	case "warning":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelNone
	}
}

// TagPolicy governs how declarations lacking a release tag are reported.
// AddToReport embeds a warning section into the written rollups; at
// LevelError it also downgrades the abort into recorded errors.
type TagPolicy struct {
	LogLevel    LogLevel
	AddToReport bool
}

// DocModel carries the doc model output settings. Path is set exactly when
// Enabled is true.
type DocModel struct {
	Enabled bool
	Path    string
}

// Config is the fully resolved build configuration. All paths are absolute.
// The zero value is not meaningful; obtain instances through Load.
type Config struct {
	ProjectFolder string
	EntryPoint    string
	Rollups       types.RollupPaths
	TagPolicy     TagPolicy
	DocModel      DocModel
}

// fileSchema mirrors the subset of the api-extractor config format this tool
// reads. Pointer fields distinguish absent keys from zero values so that
// extends merging can let child keys win individually.
type fileSchema struct {
	Extends                string           `json:"extends"`
	ProjectFolder          string           `json:"projectFolder"`
	MainEntryPointFilePath string           `json:"mainEntryPointFilePath"`
	DTSRollup              *rollupSection   `json:"dtsRollup"`
	DocModel               *docModelSection `json:"docModel"`
	Messages               *messagesSection `json:"messages"`
}

type rollupSection struct {
	Enabled               *bool   `json:"enabled"`
	UntrimmedFilePath     *string `json:"untrimmedFilePath"`
	AlphaTrimmedFilePath  *string `json:"alphaTrimmedFilePath"`
	BetaTrimmedFilePath   *string `json:"betaTrimmedFilePath"`
	PublicTrimmedFilePath *string `json:"publicTrimmedFilePath"`
}

type docModelSection struct {
	Enabled         *bool   `json:"enabled"`
	APIJSONFilePath *string `json:"apiJsonFilePath"`
}

type messagesSection struct {
	ExtractorMessageReporting map[string]*reportingRule `json:"extractorMessageReporting"`
}

type reportingRule struct {
	LogLevel           *string `json:"logLevel"`
	AddToAPIReportFile *bool   `json:"addToApiReportFile"`
}

// Load reads the config file at path, follows its extends chain, and returns
// the resolved configuration. Path-bearing fields have the projectFolder
// token substituted and are made absolute against the directory of the
// outermost config file, never the working directory.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	schema, err := loadChain(abs, map[string]bool{})
	if err != nil {
		return nil, err
	}

	configDir := filepath.Dir(abs)

	projectFolder := schema.ProjectFolder
	switch {
	case projectFolder == "":
		projectFolder = configDir
	case !filepath.IsAbs(projectFolder):
		projectFolder = filepath.Join(configDir, filepath.FromSlash(projectFolder))
	}
	projectFolder = filepath.Clean(projectFolder)

	if schema.MainEntryPointFilePath == "" {
		return nil, fmt.Errorf("config %s: %w", abs, ErrNoEntryPoint)
	}

	cfg := &Config{
		ProjectFolder: projectFolder,
		EntryPoint:    resolvePath(schema.MainEntryPointFilePath, projectFolder, configDir),
		TagPolicy:     TagPolicy{LogLevel: LevelNone},
	}

	if rs := schema.DTSRollup; rs != nil && (rs.Enabled == nil || *rs.Enabled) {
		cfg.Rollups = types.RollupPaths{
			Public:   resolvePath(strVal(rs.PublicTrimmedFilePath), projectFolder, configDir),
			Beta:     resolvePath(strVal(rs.BetaTrimmedFilePath), projectFolder, configDir),
			Alpha:    resolvePath(strVal(rs.AlphaTrimmedFilePath), projectFolder, configDir),
			Internal: resolvePath(strVal(rs.UntrimmedFilePath), projectFolder, configDir),
		}
	}

	if schema.Messages != nil {
		if rule := schema.Messages.ExtractorMessageReporting[missingReleaseTagRule]; rule != nil {
			if rule.LogLevel != nil {
				cfg.TagPolicy.LogLevel = parseLogLevel(*rule.LogLevel)
			}
			if rule.AddToAPIReportFile != nil {
				cfg.TagPolicy.AddToReport = *rule.AddToAPIReportFile
			}
		}
	}

	if ds := schema.DocModel; ds != nil && ds.Enabled != nil && *ds.Enabled {
		if p := strVal(ds.APIJSONFilePath); p != "" {
			cfg.DocModel = DocModel{Enabled: true, Path: resolvePath(p, projectFolder, configDir)}
		} else if name, ok := unscopedPackageName(projectFolder); ok {
			cfg.DocModel = DocModel{
				Enabled: true,
				Path:    filepath.Join(projectFolder, "temp", name+".json"),
			}
		}
		// A manifest that cannot supply a name leaves the doc model disabled.
	}

	return cfg, nil
}

// loadChain loads path and, recursively, the config it extends, merging the
// child over the base. visited holds every absolute path already on the
// chain so that cycles fail fast instead of recursing into an I/O error.
func loadChain(absPath string, visited map[string]bool) (*fileSchema, error) {
	clean := filepath.Clean(absPath)
	if visited[clean] {
		return nil, fmt.Errorf("%w: %s", ErrConfigCycle, clean)
	}
	visited[clean] = true

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", clean, err)
	}

	var schema fileSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", clean, err)
	}

	if schema.Extends == "" {
		return &schema, nil
	}

	basePath := filepath.FromSlash(schema.Extends)
	if !filepath.IsAbs(basePath) {
		basePath = filepath.Join(filepath.Dir(clean), basePath)
	}

	base, err := loadChain(basePath, visited)
	if err != nil {
		return nil, err
	}
	return mergeSchemas(base, &schema), nil
}

// mergeSchemas overlays child on base. Top-level scalars are replaced
// wholesale when the child sets them; the dtsRollup and docModel sections and
// the missing-release-tag rule merge key-by-key so a child can override a
// single path or flag without restating the rest.
func mergeSchemas(base, child *fileSchema) *fileSchema {
	out := *base
	out.Extends = ""
	if child.ProjectFolder != "" {
		out.ProjectFolder = child.ProjectFolder
	}
	if child.MainEntryPointFilePath != "" {
		out.MainEntryPointFilePath = child.MainEntryPointFilePath
	}
	out.DTSRollup = mergeRollup(base.DTSRollup, child.DTSRollup)
	out.DocModel = mergeDocModel(base.DocModel, child.DocModel)
	out.Messages = mergeMessages(base.Messages, child.Messages)
	return &out
}

func mergeRollup(base, child *rollupSection) *rollupSection {
	if base == nil {
		return child
	}
	if child == nil {
		return base
	}
	out := *base
	if child.Enabled != nil {
		out.Enabled = child.Enabled
	}
	if child.UntrimmedFilePath != nil {
		out.UntrimmedFilePath = child.UntrimmedFilePath
	}
	if child.AlphaTrimmedFilePath != nil {
		out.AlphaTrimmedFilePath = child.AlphaTrimmedFilePath
	}
	if child.BetaTrimmedFilePath != nil {
		out.BetaTrimmedFilePath = child.BetaTrimmedFilePath
	}
	if child.PublicTrimmedFilePath != nil {
		out.PublicTrimmedFilePath = child.PublicTrimmedFilePath
	}
	return &out
}

func mergeDocModel(base, child *docModelSection) *docModelSection {
	if base == nil {
		return child
	}
	if child == nil {
		return base
	}
	out := *base
	if child.Enabled != nil {
		out.Enabled = child.Enabled
	}
	if child.APIJSONFilePath != nil {
		out.APIJSONFilePath = child.APIJSONFilePath
	}
	return &out
}

func mergeMessages(base, child *messagesSection) *messagesSection {
	if base == nil {
		return child
	}
	if child == nil {
		return base
	}
	out := messagesSection{ExtractorMessageReporting: map[string]*reportingRule{}}
	for name, rule := range base.ExtractorMessageReporting {
		out.ExtractorMessageReporting[name] = rule
	}
	for name, rule := range child.ExtractorMessageReporting {
		if name == missingReleaseTagRule {
			out.ExtractorMessageReporting[name] = mergeRule(out.ExtractorMessageReporting[name], rule)
			continue
		}
		out.ExtractorMessageReporting[name] = rule
	}
	return &out
}

func mergeRule(base, child *reportingRule) *reportingRule {
	if base == nil {
		return child
	}
	if child == nil {
		return base
	}
	out := *base
	if child.LogLevel != nil {
		out.LogLevel = child.LogLevel
	}
	if child.AddToAPIReportFile != nil {
		out.AddToAPIReportFile = child.AddToAPIReportFile
	}
	return &out
}

// resolvePath substitutes the projectFolder token and absolutizes raw
// against configDir. Empty stays empty: a tier without a configured path.
func resolvePath(raw, projectFolder, configDir string) string {
	if raw == "" {
		return ""
	}
	expanded := strings.ReplaceAll(raw, projectFolderToken, projectFolder)
	expanded = filepath.FromSlash(expanded)
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(configDir, expanded)
	}
	return filepath.Clean(expanded)
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// unscopedPackageName reads the name field from package.json in dir and
// strips any @scope/ prefix. ok is false when the manifest is missing,
// unreadable, or has no usable name.
func unscopedPackageName(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return "", false
	}
	var manifest struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", false
	}
	name := manifest.Name
	if strings.HasPrefix(name, "@") {
		if i := strings.Index(name, "/"); i >= 0 {
			name = name[i+1:]
		}
	}
	if name == "" {
		return "", false
	}
	return name, true
}
