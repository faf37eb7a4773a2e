// Package detect infers a project's tech stack and conventions from its
// manifest files or from a remote repository. Detection is best-effort:
// individual probe failures are treated as "no signal" and never abort
// the overall call.
package detect

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Project kinds.
const (
	KindMonorepo    = "monorepo"
	KindLibrary     = "library"
	KindApplication = "application"
	KindUnknown     = "unknown"
)

// Commands holds canonical invocation strings for common tasks.
type Commands struct {
	Build  string `json:"build,omitempty"`
	Test   string `json:"test,omitempty"`
	Lint   string `json:"lint,omitempty"`
	Dev    string `json:"dev,omitempty"`
	Format string `json:"format,omitempty"`
}

// Empty reports whether no command was detected.
func (c Commands) Empty() bool {
	return c == Commands{}
}

// Project is the result of one detection call. It is constructed fresh per
// call and never mutated after being returned.
type Project struct {
	Name              string   `json:"name,omitempty"`
	Description       string   `json:"description,omitempty"`
	Stack             []string `json:"stack,omitempty"`
	Databases         []string `json:"databases,omitempty"`
	Commands          Commands `json:"commands"`
	PackageManager    string   `json:"package_manager,omitempty"`
	Kind              string   `json:"kind"`
	License           string   `json:"license,omitempty"`
	RepoHost          string   `json:"repo_host,omitempty"`
	RepoURL           string   `json:"repo_url,omitempty"`
	CICD              string   `json:"cicd,omitempty"`
	HasDocker         bool     `json:"has_docker"`
	ContainerRegistry string   `json:"container_registry,omitempty"`
	TestFramework     string   `json:"test_framework,omitempty"`
	ExistingFiles     []string `json:"existing_files,omitempty"`
}

// addStack appends entries not already present, preserving insertion order
// so the primary language stays first.
func (p *Project) addStack(items ...string) {
	for _, item := range items {
		if item == "" {
			continue
		}
		found := false
		for _, s := range p.Stack {
			if s == item {
				found = true
				break
			}
		}
		if !found {
			p.Stack = append(p.Stack, item)
		}
	}
}

func (p *Project) addDatabase(name string) {
	for _, d := range p.Databases {
		if d == name {
			return
		}
	}
	p.Databases = append(p.Databases, name)
}

// noSignal reports whether the detection found nothing usable. A named but
// otherwise empty result is still valid.
func (p *Project) noSignal() bool {
	return p.Name == "" && len(p.Stack) == 0
}

const defaultCloneTimeout = 30 * time.Second

// Detector performs local and remote project detection. The zero value is
// not usable; construct with New.
type Detector struct {
	// Runner launches the external clone tool. Swappable so tests can
	// verify that unsafe URLs never reach a subprocess.
	Runner Runner
	// HTTPClient is used for host metadata APIs and raw manifest fetches.
	HTTPClient *http.Client
	// CloneTimeout bounds the shallow-clone subprocess.
	CloneTimeout time.Duration
}

// New returns a Detector with the git CLI runner and default timeouts.
func New() *Detector {
	return &Detector{
		Runner:       execRunner{},
		HTTPClient:   &http.Client{Timeout: 15 * time.Second},
		CloneTimeout: defaultCloneTimeout,
	}
}

// Detect inspects a local directory path or a remote repository URL.
// It returns nil when no signals were found, including the fail-closed
// case of an unsafe remote URL.
func (d *Detector) Detect(ctx context.Context, source string) *Project {
	if isRemoteSource(source) {
		return d.detectRemote(ctx, source)
	}
	return Local(source)
}

func isRemoteSource(source string) bool {
	for _, prefix := range []string{"https://", "http://", "git://", "ssh://"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return strings.HasPrefix(source, "git@")
}
