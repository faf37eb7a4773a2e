package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Runner launches the external clone tool. The URL is always passed as a
// discrete argument so it can never be interpreted by a shell.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Run()
}

// detectRemote classifies the host and tries a metadata-API detection
// first; on failure or unrecognized host it falls back to a shallow clone.
// Unsafe URLs fail closed: no subprocess is ever invoked for them.
func (d *Detector) detectRemote(ctx context.Context, rawURL string) *Project {
	if !IsValidGitURL(rawURL) {
		slog.Warn("rejecting unsafe repository URL")
		return nil
	}

	host, owner, repo := classifyRemote(rawURL)
	switch host {
	case "github.com":
		if p := d.detectGitHub(ctx, owner, repo); p != nil {
			return p
		}
	case "gitlab.com":
		if p := d.detectGitLab(ctx, owner, repo); p != nil {
			return p
		}
	}
	return d.detectViaClone(ctx, rawURL)
}

// classifyRemote extracts host, owner and repo from a clone URL. Owner or
// repo may be empty for URLs that don't follow the owner/repo shape.
func classifyRemote(rawURL string) (host, owner, repo string) {
	host = hostOf(rawURL)

	p := rawURL
	if rest, ok := strings.CutPrefix(p, "git@"); ok {
		_, p, _ = strings.Cut(rest, ":")
	} else if u, err := url.Parse(rawURL); err == nil {
		p = strings.TrimPrefix(u.Path, "/")
	}
	p = strings.TrimSuffix(p, ".git")

	parts := strings.Split(p, "/")
	if len(parts) >= 2 {
		owner, repo = parts[len(parts)-2], parts[len(parts)-1]
	}
	return host, owner, repo
}

type githubRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	HTMLURL     string `json:"html_url"`
	License     struct {
		SpdxID string `json:"spdx_id"`
	} `json:"license"`
}

// manifestNames are the files fetched from a host's raw-content endpoint
// so the local probes can run without a clone.
var manifestNames = []string{
	"package.json", "pyproject.toml", "requirements.txt",
	"Cargo.toml", "go.mod", "Makefile",
}

func (d *Detector) detectGitHub(ctx context.Context, owner, repo string) *Project {
	if owner == "" || repo == "" {
		return nil
	}

	var meta githubRepo
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/%s", owner, repo)
	if err := d.getJSON(ctx, apiURL, &meta); err != nil {
		slog.Debug("github metadata probe failed", "error", err)
		return nil
	}

	rawBase := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/HEAD/", owner, repo)
	p := d.detectFromFetchedManifests(ctx, rawBase)
	if p == nil {
		p = &Project{Kind: KindUnknown}
	}

	if p.Name == "" {
		p.Name = meta.Name
	}
	if p.Description == "" {
		p.Description = meta.Description
	}
	if len(p.Stack) == 0 && meta.Language != "" {
		p.addStack(meta.Language)
	}
	if p.License == "" && meta.License.SpdxID != "" && meta.License.SpdxID != "NOASSERTION" {
		p.License = meta.License.SpdxID
	}
	p.RepoHost = "github.com"
	p.RepoURL = meta.HTMLURL

	if p.noSignal() {
		return nil
	}
	return p
}

type gitlabRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	WebURL      string `json:"web_url"`
	DefaultBranch string `json:"default_branch"`
}

func (d *Detector) detectGitLab(ctx context.Context, owner, repo string) *Project {
	if owner == "" || repo == "" {
		return nil
	}

	var meta gitlabRepo
	apiURL := fmt.Sprintf("https://gitlab.com/api/v4/projects/%s", url.PathEscape(owner+"/"+repo))
	if err := d.getJSON(ctx, apiURL, &meta); err != nil {
		slog.Debug("gitlab metadata probe failed", "error", err)
		return nil
	}

	branch := meta.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	rawBase := fmt.Sprintf("https://gitlab.com/%s/%s/-/raw/%s/", owner, repo, branch)
	p := d.detectFromFetchedManifests(ctx, rawBase)
	if p == nil {
		p = &Project{Kind: KindUnknown}
	}

	if p.Name == "" {
		p.Name = meta.Name
	}
	if p.Description == "" {
		p.Description = meta.Description
	}
	p.RepoHost = "gitlab.com"
	p.RepoURL = meta.WebURL

	if p.noSignal() {
		return nil
	}
	return p
}

// detectFromFetchedManifests pulls well-known manifests from a raw-content
// base URL into a scratch directory and runs the local probes over it. The
// scratch directory is removed on every exit path.
func (d *Detector) detectFromFetchedManifests(ctx context.Context, rawBase string) *Project {
	tmp, err := os.MkdirTemp("", "lynxprompt-detect-")
	if err != nil {
		return nil
	}
	defer os.RemoveAll(tmp)

	g, gCtx := errgroup.WithContext(ctx)
	for _, name := range manifestNames {
		g.Go(func() error {
			data, err := d.getRaw(gCtx, rawBase+name)
			if err != nil {
				return nil // missing manifest is not an error
			}
			// Ignore write failures; the probe simply sees no file.
			os.WriteFile(filepath.Join(tmp, name), data, 0o600)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil
	}

	p := Local(tmp)
	if p != nil && p.Name == filepath.Base(tmp) {
		// Scratch-directory-derived name; the host metadata name wins.
		p.Name = ""
	}
	return p
}

// detectViaClone shallow-clones into a temporary directory, runs local
// detection against it, and guarantees cleanup on every exit path
// including timeout.
func (d *Detector) detectViaClone(ctx context.Context, rawURL string) *Project {
	tmp, err := os.MkdirTemp("", "lynxprompt-clone-")
	if err != nil {
		slog.Warn("creating clone directory failed", "error", err)
		return nil
	}
	defer os.RemoveAll(tmp)

	cloneCtx, cancel := context.WithTimeout(ctx, d.CloneTimeout)
	defer cancel()

	if err := d.Runner.Run(cloneCtx, "git", "clone", "--depth", "1", "--quiet", rawURL, tmp); err != nil {
		slog.Warn("shallow clone failed", "error", err)
		return nil
	}

	p := Local(tmp)
	if p == nil {
		return nil
	}
	// A manifest-derived name survives; a name derived from the scratch
	// directory is meaningless and gets replaced by the repo name.
	if p.Name == filepath.Base(tmp) {
		p.Name = repoNameFrom(rawURL, p.Name)
	}
	p.RepoURL = rawURL
	p.RepoHost = hostOf(rawURL)
	return p
}

func repoNameFrom(rawURL, fallback string) string {
	_, _, repo := classifyRemote(rawURL)
	if repo != "" {
		return repo
	}
	return fallback
}

const maxFetchSize = 1 << 20 // 1MB per fetched manifest

func (d *Detector) getRaw(ctx context.Context, fetchURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
}

func (d *Detector) getJSON(ctx context.Context, fetchURL string, v any) error {
	data, err := d.getRaw(ctx, fetchURL)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
