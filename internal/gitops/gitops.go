// Package gitops publishes solved problems to the target GitHub repository
// over SSH.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/autofeedr/autofeedr/internal/ledger"
)

var commitURLPattern = regexp.MustCompile(`^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)

// Request describes one publish: where to push, what to write, and the
// problem identity recorded in the progress ledger.
type Request struct {
	RepoSSHURL    string
	DefaultBranch string
	SolutionsDir  string
	AuthorName    string
	AuthorEmail   string
	PrivateKeyPEM string
	Passphrase    string

	Filename     string
	SolutionCode string
	TestsCode    string

	FrontendID string
	Slug       string
	Title      string
	Difficulty string
	ResolvedAt time.Time
}

type Result struct {
	CommitSHA    string
	CommitURL    string
	SolutionPath string
	TestsPath    string
}

// Publisher clones into isolated temp directories under tmpRoot. Each publish
// is fully self-contained: key material, known_hosts, and the working copy
// all live in one directory removed afterwards.
type Publisher struct {
	tmpRoot string

	// scanHostKey is a seam for tests; defaults to ssh-keyscan.
	scanHostKey func(ctx context.Context, host string) ([]byte, error)
}

func NewPublisher(tmpRoot string) *Publisher {
	return &Publisher{tmpRoot: tmpRoot, scanHostKey: runKeyscan}
}

func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.PrivateKeyPEM) == "" {
		return nil, fmt.Errorf("ssh key is empty")
	}
	branch := strings.TrimSpace(req.DefaultBranch)
	if branch == "" {
		branch = "main"
	}

	if err := os.MkdirAll(p.tmpRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp root: %w", err)
	}
	workDir, err := os.MkdirTemp(p.tmpRoot, "autofeedr-git-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	auth, err := p.buildAuth(ctx, workDir, req)
	if err != nil {
		return nil, err
	}

	repoDir := filepath.Join(workDir, "repo")
	repo, err := p.cloneRepo(ctx, repoDir, req.RepoSSHURL, branch, auth)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	solutionRel, testsRel := targetPaths(req.SolutionsDir, req.Difficulty, req.Filename)
	if err := writeFile(repoDir, solutionRel, req.SolutionCode); err != nil {
		return nil, err
	}
	if err := writeFile(repoDir, testsRel, req.TestsCode); err != nil {
		return nil, err
	}
	if err := p.updateLedger(repoDir, req, solutionRel); err != nil {
		return nil, err
	}

	for _, rel := range []string{solutionRel, testsRel, "PROGRESS.md"} {
		if _, err := wt.Add(rel); err != nil {
			return nil, fmt.Errorf("git add %s: %w", rel, err)
		}
	}

	when := req.ResolvedAt
	if when.IsZero() {
		when = time.Now().UTC()
	}
	hash, err := wt.Commit(commitMessage(req.Filename), &git.CommitOptions{
		Author: &object.Signature{Name: req.AuthorName, Email: req.AuthorEmail, When: when},
	})
	if err != nil {
		return nil, fmt.Errorf("git commit: %w", err)
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	if err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
	}); err != nil {
		return nil, fmt.Errorf("git push: %w", err)
	}

	return &Result{
		CommitSHA:    hash.String(),
		CommitURL:    CommitURL(req.RepoSSHURL, hash.String()),
		SolutionPath: solutionRel,
		TestsPath:    testsRel,
	}, nil
}

// buildAuth loads the ephemeral key and pins the remote host key via
// ssh-keyscan into a per-publish known_hosts file.
func (p *Publisher) buildAuth(ctx context.Context, workDir string, req Request) (*gitssh.PublicKeys, error) {
	auth, err := gitssh.NewPublicKeys("git", []byte(req.PrivateKeyPEM), req.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("load ssh key: %w", err)
	}

	host := sshHost(req.RepoSSHURL)
	keys, err := p.scanHostKey(ctx, host)
	if err != nil || len(strings.TrimSpace(string(keys))) == 0 {
		return nil, fmt.Errorf("resolve host key for %s: %w", host, err)
	}
	knownHostsPath := filepath.Join(workDir, "known_hosts")
	if err := os.WriteFile(knownHostsPath, keys, 0o600); err != nil {
		return nil, fmt.Errorf("write known_hosts: %w", err)
	}
	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts: %w", err)
	}
	auth.HostKeyCallback = callback
	return auth, nil
}

// cloneRepo clones shallow and single-branch; when the named branch does not
// exist remotely it falls back to a shallow default clone and creates the
// branch locally.
func (p *Publisher) cloneRepo(ctx context.Context, dir, url, branch string, auth *gitssh.PublicKeys) (*git.Repository, error) {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           url,
		Auth:          auth,
		Depth:         1,
		SingleBranch:  true,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
	})
	if err == nil {
		return repo, nil
	}

	if rmErr := os.RemoveAll(dir); rmErr != nil {
		return nil, fmt.Errorf("reset clone dir: %w", rmErr)
	}
	repo, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   url,
		Auth:  auth,
		Depth: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", url, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	checkout := &git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	}
	if ref, refErr := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true); refErr == nil {
		checkout.Hash = ref.Hash()
		checkout.Branch = plumbing.NewBranchReferenceName(branch)
	}
	if err := wt.Checkout(checkout); err != nil {
		return nil, fmt.Errorf("checkout branch %s: %w", branch, err)
	}
	return repo, nil
}

// updateLedger merges the existing PROGRESS.md, any legacy
// leetcode_progress.json, and the new entry, then rewrites PROGRESS.md.
func (p *Publisher) updateLedger(repoDir string, req Request, solutionRel string) error {
	var entries []ledger.Entry
	if data, err := os.ReadFile(filepath.Join(repoDir, "PROGRESS.md")); err == nil {
		entries = ledger.ParseMarkdown(data)
	}
	if data, err := os.ReadFile(filepath.Join(repoDir, "leetcode_progress.json")); err == nil {
		if legacy, err := ledger.ParseLegacyJSON(data); err == nil {
			entries = ledger.Merge(entries, legacy)
		}
	}

	when := req.ResolvedAt
	if when.IsZero() {
		when = time.Now().UTC()
	}
	entries = ledger.Merge(entries, []ledger.Entry{{
		FrontendID: req.FrontendID,
		Slug:       req.Slug,
		Title:      req.Title,
		Difficulty: strings.ToLower(req.Difficulty),
		Path:       solutionRel,
		ResolvedAt: when,
	}})

	body := ledger.Render(entries, when)
	if err := os.WriteFile(filepath.Join(repoDir, "PROGRESS.md"), []byte(body), 0o644); err != nil {
		return fmt.Errorf("write progress ledger: %w", err)
	}
	return nil
}

// targetPaths places the solution under a difficulty-named subdirectory of
// the solutions dir and the tests beside it under tests/.
func targetPaths(solutionsDir, difficulty, filename string) (string, string) {
	base := strings.Trim(strings.TrimSpace(solutionsDir), "/")
	if base == "" {
		base = "leetcode/python"
	}
	dir := base + "/" + difficultyDir(difficulty)
	testsName := strings.TrimSuffix(filename, ".py") + "_test.py"
	return dir + "/" + filename, dir + "/tests/" + testsName
}

func difficultyDir(difficulty string) string {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return "easy"
	case "hard":
		return "hard"
	default:
		return "medium"
	}
}

func commitMessage(filename string) string {
	id := filename
	if i := strings.Index(filename, "_"); i > 0 {
		id = filename[:i]
	}
	name := strings.TrimSuffix(filename, ".py")
	return fmt.Sprintf("leetcode: solve #%s %s", id, name)
}

// CommitURL derives the browsable commit URL from a GitHub SSH remote.
// Non-GitHub remotes yield an empty string.
func CommitURL(repoSSHURL, sha string) string {
	m := commitURLPattern.FindStringSubmatch(strings.TrimSpace(repoSSHURL))
	if m == nil {
		return ""
	}
	return fmt.Sprintf("https://github.com/%s/%s/commit/%s", m[1], m[2], sha)
}

func sshHost(repoSSHURL string) string {
	s := strings.TrimSpace(repoSSHURL)
	if at := strings.Index(s, "@"); at >= 0 {
		s = s[at+1:]
		if colon := strings.Index(s, ":"); colon > 0 {
			return s[:colon]
		}
	}
	return "github.com"
}

func runKeyscan(ctx context.Context, host string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "ssh-keyscan", host).Output()
	if err != nil {
		return nil, fmt.Errorf("ssh-keyscan %s: %w", host, err)
	}
	return out, nil
}

func writeFile(repoDir, rel, content string) error {
	abs := filepath.Join(repoDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
