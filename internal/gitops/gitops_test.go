package gitops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autofeedr/autofeedr/internal/ledger"
)

func TestCommitURL(t *testing.T) {
	cases := map[string]string{
		"git@github.com:octocat/hello.git":  "https://github.com/octocat/hello/commit/abc123",
		"git@github.com:octocat/hello":      "https://github.com/octocat/hello/commit/abc123",
		" git@github.com:octocat/hello.git": "https://github.com/octocat/hello/commit/abc123",
		"https://github.com/octocat/hello":  "",
		"git@gitlab.com:octocat/hello.git":  "",
	}
	for url, want := range cases {
		assert.Equal(t, want, CommitURL(url, "abc123"), url)
	}
}

func TestTargetPaths(t *testing.T) {
	solution, tests := targetPaths("leetcode/python", "Easy", "1_two_sum.py")
	assert.Equal(t, "leetcode/python/easy/1_two_sum.py", solution)
	assert.Equal(t, "leetcode/python/easy/tests/1_two_sum_test.py", tests)

	// defaults and normalization
	solution, _ = targetPaths("  /custom/dir/ ", "HARD", "23_merge.py")
	assert.Equal(t, "custom/dir/hard/23_merge.py", solution)

	solution, _ = targetPaths("", "weird", "5_x.py")
	assert.Equal(t, "leetcode/python/medium/5_x.py", solution)
}

func TestCommitMessage(t *testing.T) {
	assert.Equal(t, "leetcode: solve #1 1_two_sum", commitMessage("1_two_sum.py"))
	assert.Equal(t, "leetcode: solve #125 125_valid_palindrome", commitMessage("125_valid_palindrome.py"))
}

func TestSSHHost(t *testing.T) {
	assert.Equal(t, "github.com", sshHost("git@github.com:o/r.git"))
	assert.Equal(t, "git.internal.example", sshHost("git@git.internal.example:o/r.git"))
	assert.Equal(t, "github.com", sshHost("not-an-ssh-url"))
}

func TestUpdateLedger_MergesExistingAndLegacy(t *testing.T) {
	repoDir := t.TempDir()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	existing := ledger.Render([]ledger.Entry{{
		FrontendID: "1", Slug: "two-sum", Title: "Two Sum", Difficulty: "easy",
		Path: "leetcode/python/easy/1_two_sum.py", ResolvedAt: now.Add(-48 * time.Hour),
	}}, now.Add(-48*time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "PROGRESS.md"), []byte(existing), 0o644))

	legacy := `[{"frontend_id":"9","title_slug":"palindrome-number","title":"Palindrome Number","difficulty":"Easy","path":"easy/9.py","resolved_at":"2025-03-01T00:00:00Z"}]`
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "leetcode_progress.json"), []byte(legacy), 0o644))

	p := NewPublisher(t.TempDir())
	req := Request{
		FrontendID: "146", Slug: "lru-cache", Title: "LRU Cache", Difficulty: "Medium",
		ResolvedAt: now,
	}
	require.NoError(t, p.updateLedger(repoDir, req, "leetcode/python/medium/146_lru_cache.py"))

	body, err := os.ReadFile(filepath.Join(repoDir, "PROGRESS.md"))
	require.NoError(t, err)

	entries := ledger.ParseMarkdown(body)
	require.Len(t, entries, 3)
	assert.Contains(t, string(body), "Total solved: 3")
	assert.Contains(t, string(body), "#146 LRU Cache")
	assert.Contains(t, string(body), "#9 Palindrome Number")
}
