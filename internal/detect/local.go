package detect

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// Local probes a project directory for manifest files in a fixed priority
// order: Node manifest, Python project files, Rust manifest, Go module
// file, Makefile, Docker files. The first probe that yields a signal sets
// the primary fields; supplementary probes (license, CI, docker,
// README description, existing AI config files, git remote) always run.
// Returns nil when zero signals were found.
func Local(dir string) *Project {
	p := &Project{Kind: KindUnknown}

	primaries := []func(string, *Project) bool{
		probeNode,
		probePython,
		probeRust,
		probeGo,
		probeMakefile,
		probeDockerfile,
	}
	for _, probe := range primaries {
		if probe(dir, p) {
			break
		}
	}

	probeLicense(dir, p)
	probeCI(dir, p)
	probeCompose(dir, p)
	probeReadme(dir, p)
	probeExistingFiles(dir, p)
	probeGitRemote(dir, p)

	if p.noSignal() {
		return nil
	}
	if p.Name == "" {
		if abs, err := filepath.Abs(dir); err == nil {
			p.Name = filepath.Base(abs)
		}
	}
	return p
}

// --- primary probes ---

type packageJSON struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Main            string            `json:"main"`
	Private         bool              `json:"private"`
	Workspaces      []string          `json:"workspaces"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func probeNode(dir string, p *Project) bool {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return false
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false
	}

	p.Name = pkg.Name
	p.Description = pkg.Description
	p.addStack("Node.js")

	deps := make(map[string]bool, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		deps[name] = true
	}
	for name := range pkg.DevDependencies {
		deps[name] = true
	}

	// Stable iteration: consult the lookup tables through the dep set
	// rather than ranging over the map, so stack order is deterministic.
	for _, name := range []string{"typescript", "react", "next", "vue", "nuxt", "svelte", "@sveltejs/kit", "@angular/core", "express", "fastify", "koa", "@nestjs/core", "tailwindcss", "electron", "vite", "webpack"} {
		if deps[name] {
			p.addStack(nodeStack[name])
		}
	}
	for _, name := range []string{"pg", "postgres", "mysql", "mysql2", "mongoose", "mongodb", "redis", "ioredis", "better-sqlite3", "sqlite3"} {
		if deps[name] {
			p.addDatabase(nodeDatabases[name])
		}
	}
	for _, name := range nodeTestFrameworks {
		if deps[name] {
			p.TestFramework = strings.TrimPrefix(name, "@playwright/")
			break
		}
	}

	p.PackageManager = detectPackageManager(dir)

	for script, field := range map[string]*string{
		"build":  &p.Commands.Build,
		"test":   &p.Commands.Test,
		"lint":   &p.Commands.Lint,
		"dev":    &p.Commands.Dev,
		"format": &p.Commands.Format,
	} {
		if _, ok := pkg.Scripts[script]; ok {
			*field = runScript(p.PackageManager, script)
		}
	}

	switch {
	case len(pkg.Workspaces) > 0 || fileExists(filepath.Join(dir, "pnpm-workspace.yaml")):
		p.Kind = KindMonorepo
	case pkg.Main != "" && !pkg.Private:
		p.Kind = KindLibrary
	default:
		p.Kind = KindApplication
	}

	return true
}

func detectPackageManager(dir string) string {
	switch {
	case fileExists(filepath.Join(dir, "pnpm-lock.yaml")):
		return "pnpm"
	case fileExists(filepath.Join(dir, "yarn.lock")):
		return "yarn"
	case fileExists(filepath.Join(dir, "bun.lock")) || fileExists(filepath.Join(dir, "bun.lockb")):
		return "bun"
	default:
		return "npm"
	}
}

type pyProject struct {
	Project struct {
		Name         string   `toml:"name"`
		Description  string   `toml:"description"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name         string            `toml:"name"`
			Description  string            `toml:"description"`
			Dependencies map[string]any    `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func probePython(dir string, p *Project) bool {
	var reqs []string

	if data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml")); err == nil {
		var py pyProject
		if err := toml.Unmarshal(data, &py); err == nil {
			if py.Project.Name != "" {
				p.Name = py.Project.Name
				p.Description = py.Project.Description
			} else if py.Tool.Poetry.Name != "" {
				p.Name = py.Tool.Poetry.Name
				p.Description = py.Tool.Poetry.Description
			}
			reqs = append(reqs, py.Project.Dependencies...)
			for name := range py.Tool.Poetry.Dependencies {
				reqs = append(reqs, name)
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join(dir, "requirements.txt")); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			reqs = append(reqs, line)
		}
	}

	if p.Name == "" && len(reqs) == 0 {
		return false
	}

	p.addStack("Python")

	present := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		present[requirementName(r)] = true
	}
	for _, name := range []string{"django", "flask", "fastapi", "celery", "numpy", "pandas", "torch", "tensorflow"} {
		if present[name] {
			p.addStack(pythonStack[name])
		}
	}
	for _, name := range []string{"psycopg2", "psycopg2-binary", "asyncpg", "pymysql", "pymongo", "redis", "sqlalchemy"} {
		if present[name] {
			p.addDatabase(pythonDatabases[name])
		}
	}
	for _, name := range pythonTestFrameworks {
		if present[name] {
			p.TestFramework = name
			p.Commands.Test = name
			break
		}
	}

	p.Kind = KindApplication
	return true
}

// requirementName strips version specifiers and extras from a requirement
// line, e.g. "django>=4.0" → "django", "uvicorn[standard]" → "uvicorn".
func requirementName(req string) string {
	name := strings.ToLower(strings.TrimSpace(req))
	for _, sep := range []string{"[", "=", ">", "<", "~", "!", ";", " "} {
		if i := strings.Index(name, sep); i >= 0 {
			name = name[:i]
		}
	}
	return name
}

type cargoManifest struct {
	Package struct {
		Name        string `toml:"name"`
		Description string `toml:"description"`
	} `toml:"package"`
	Workspace    *struct{}          `toml:"workspace"`
	Lib          *struct{}          `toml:"lib"`
	Dependencies map[string]any     `toml:"dependencies"`
}

func probeRust(dir string, p *Project) bool {
	data, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return false
	}
	var cargo cargoManifest
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return false
	}

	p.Name = cargo.Package.Name
	p.Description = cargo.Package.Description
	p.addStack("Rust")

	for _, name := range []string{"tokio", "actix-web", "axum", "rocket", "serde", "clap"} {
		if _, ok := cargo.Dependencies[name]; ok {
			p.addStack(rustStack[name])
		}
	}
	for _, name := range []string{"sqlx", "diesel", "rusqlite", "mongodb", "redis", "tokio-postgres"} {
		if _, ok := cargo.Dependencies[name]; ok {
			p.addDatabase(rustDatabases[name])
		}
	}

	p.Commands = Commands{
		Build:  "cargo build",
		Test:   "cargo test",
		Lint:   "cargo clippy",
		Format: "cargo fmt",
	}
	p.TestFramework = "cargo test"

	switch {
	case cargo.Workspace != nil:
		p.Kind = KindMonorepo
	case cargo.Lib != nil:
		p.Kind = KindLibrary
	default:
		p.Kind = KindApplication
	}
	return true
}

func probeGo(dir string, p *Project) bool {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return false
	}
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil || f.Module == nil {
		return false
	}

	p.Name = path.Base(f.Module.Mod.Path)
	p.addStack("Go")

	for _, req := range f.Require {
		if req.Indirect {
			continue
		}
		for prefix, entry := range goStack {
			if strings.HasPrefix(req.Mod.Path, prefix) {
				p.addStack(entry)
			}
		}
		for prefix, db := range goDatabases {
			if strings.HasPrefix(req.Mod.Path, prefix) {
				p.addDatabase(db)
			}
		}
	}
	// addStack de-duplicates, but require order varies across go.mod
	// files anyway; sort the framework tail for stable output.
	if len(p.Stack) > 1 {
		sortTail(p.Stack, 1)
	}

	p.Commands = Commands{
		Build:  "go build ./...",
		Test:   "go test ./...",
		Lint:   "go vet ./...",
		Format: "gofmt -w .",
	}
	p.TestFramework = "go test"

	if dirExists(filepath.Join(dir, "cmd")) || fileExists(filepath.Join(dir, "main.go")) {
		p.Kind = KindApplication
	} else {
		p.Kind = KindLibrary
	}
	return true
}

func probeMakefile(dir string, p *Project) bool {
	data, err := os.ReadFile(filepath.Join(dir, "Makefile"))
	if err != nil {
		return false
	}

	targets := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "#") {
			continue
		}
		name, rest, ok := strings.Cut(line, ":")
		if !ok || strings.HasPrefix(rest, "=") {
			continue
		}
		name = strings.TrimSpace(name)
		if name != "" && !strings.ContainsAny(name, " $%") {
			targets[name] = true
		}
	}
	if len(targets) == 0 {
		return false
	}

	p.addStack("Make")
	for target, field := range map[string]*string{
		"build":  &p.Commands.Build,
		"test":   &p.Commands.Test,
		"lint":   &p.Commands.Lint,
		"dev":    &p.Commands.Dev,
		"fmt":    &p.Commands.Format,
		"format": &p.Commands.Format,
	} {
		if targets[target] {
			*field = "make " + target
		}
	}
	return true
}

func probeDockerfile(dir string, p *Project) bool {
	if !fileExists(filepath.Join(dir, "Dockerfile")) {
		return false
	}
	p.addStack("Docker")
	p.HasDocker = true
	return true
}

// --- supplementary probes ---

func probeLicense(dir string, p *Project) {
	if p.License != "" {
		return
	}
	for _, name := range []string{"LICENSE", "LICENSE.md", "LICENSE.txt", "COPYING"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		p.License = classifyLicense(string(data))
		return
	}
}

func classifyLicense(text string) string {
	head := text
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(head)
	switch {
	case strings.Contains(lower, "mit license"):
		return "MIT"
	case strings.Contains(lower, "apache license") && strings.Contains(head, "2.0"):
		return "Apache-2.0"
	case strings.Contains(lower, "gnu general public license") && strings.Contains(head, "3"):
		return "GPL-3.0"
	case strings.Contains(lower, "gnu general public license"):
		return "GPL"
	case strings.Contains(lower, "bsd 3-clause") || strings.Contains(lower, "redistribution and use"):
		return "BSD-3-Clause"
	case strings.Contains(lower, "mozilla public license"):
		return "MPL-2.0"
	case strings.Contains(lower, "unlicense"):
		return "Unlicense"
	default:
		return "custom"
	}
}

// workflowFile is the subset of a GitHub Actions workflow we care about.
type workflowFile struct {
	Name string `yaml:"name"`
	Jobs map[string]struct {
		Steps []struct {
			Uses string `yaml:"uses"`
			With map[string]string `yaml:"with"`
		} `yaml:"steps"`
	} `yaml:"jobs"`
}

func probeCI(dir string, p *Project) {
	if p.CICD == "" {
		switch {
		case dirHasYAML(filepath.Join(dir, ".github", "workflows")):
			p.CICD = "GitHub Actions"
		case fileExists(filepath.Join(dir, ".gitlab-ci.yml")):
			p.CICD = "GitLab CI"
		case fileExists(filepath.Join(dir, ".circleci", "config.yml")):
			p.CICD = "CircleCI"
		case fileExists(filepath.Join(dir, "Jenkinsfile")):
			p.CICD = "Jenkins"
		}
	}

	if p.ContainerRegistry != "" || p.CICD != "GitHub Actions" {
		return
	}
	entries, err := os.ReadDir(filepath.Join(dir, ".github", "workflows"))
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, ".github", "workflows", entry.Name()))
		if err != nil {
			continue
		}
		var wf workflowFile
		if err := yaml.Unmarshal(data, &wf); err != nil {
			continue
		}
		for _, job := range wf.Jobs {
			for _, step := range job.Steps {
				if reg := registryIn(step.With["registry"]); reg != "" {
					p.ContainerRegistry = reg
					return
				}
				if reg := registryIn(step.With["images"]); reg != "" {
					p.ContainerRegistry = reg
					return
				}
			}
		}
	}
}

func registryIn(value string) string {
	for _, reg := range containerRegistries {
		if strings.Contains(value, reg) {
			return reg
		}
	}
	return ""
}

// composeFile is the subset of a docker-compose file we care about.
type composeFile struct {
	Services map[string]struct {
		Image string `yaml:"image"`
	} `yaml:"services"`
}

func probeCompose(dir string, p *Project) {
	for _, name := range []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		p.HasDocker = true

		var compose composeFile
		if err := yaml.Unmarshal(data, &compose); err != nil {
			return
		}
		// Service names sorted for deterministic database ordering.
		for _, svc := range sortedKeys(compose.Services) {
			image := compose.Services[svc].Image
			base := image
			if i := strings.LastIndex(base, "/"); i >= 0 {
				base = base[i+1:]
			}
			if i := strings.Index(base, ":"); i >= 0 {
				base = base[:i]
			}
			if db, ok := composeImageDatabases[base]; ok {
				p.addDatabase(db)
			}
			if p.ContainerRegistry == "" {
				if host, _, ok := strings.Cut(image, "/"); ok && strings.Contains(host, ".") {
					p.ContainerRegistry = host
				}
			}
		}
		return
	}
}

func probeReadme(dir string, p *Project) {
	if p.Description != "" {
		return
	}
	data, err := os.ReadFile(filepath.Join(dir, "README.md"))
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "![") || strings.HasPrefix(line, "[!") {
			continue
		}
		p.Description = line
		return
	}
}

func probeExistingFiles(dir string, p *Project) {
	for _, name := range aiConfigFiles {
		if fileExists(filepath.Join(dir, name)) || dirExists(filepath.Join(dir, name)) {
			p.ExistingFiles = append(p.ExistingFiles, name)
		}
	}
}

// probeGitRemote reads the origin URL from .git/config without shelling
// out to git.
func probeGitRemote(dir string, p *Project) {
	if p.RepoURL != "" {
		return
	}
	data, err := os.ReadFile(filepath.Join(dir, ".git", "config"))
	if err != nil {
		return
	}
	inOrigin := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			inOrigin = line == `[remote "origin"]`
			continue
		}
		if !inOrigin {
			continue
		}
		if key, value, ok := strings.Cut(line, "="); ok && strings.TrimSpace(key) == "url" {
			p.RepoURL = strings.TrimSpace(value)
			p.RepoHost = hostOf(p.RepoURL)
			return
		}
	}
}

// hostOf extracts the repository host from a clone URL, including
// SCP-style git@host:path syntax.
func hostOf(repoURL string) string {
	u := repoURL
	if rest, ok := strings.CutPrefix(u, "git@"); ok {
		if host, _, ok := strings.Cut(rest, ":"); ok {
			return host
		}
		return rest
	}
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.IndexAny(u, "/"); i >= 0 {
		u = u[:i]
	}
	if i := strings.Index(u, "@"); i >= 0 {
		u = u[i+1:]
	}
	return u
}

// --- small helpers ---

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml")
}

func dirHasYAML(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && isYAML(e.Name()) {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortTail(s []string, from int) {
	sort.Strings(s[from:])
}
