package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/onsi/gomega"

	"github.com/stacklok/template-registry-server/internal/repository"
)

// GitTestHelper manages Git repositories for testing
type GitTestHelper struct {
	ctx     context.Context
	tempDir string
}

// GitTestRepository represents a test Git repository
type GitTestRepository struct {
	Name     string
	Path     string
	CloneURL string
}

// NewGitTestHelper creates a new Git test helper
func NewGitTestHelper(ctx context.Context) *GitTestHelper {
	tempDir, err := os.MkdirTemp("", "git-test-repos-*")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return &GitTestHelper{
		ctx:     ctx,
		tempDir: tempDir,
	}
}

// CreateRepository creates a new Git repository with an initial commit on main
func (g *GitTestHelper) CreateRepository(name string) *GitTestRepository {
	repoPath := filepath.Join(g.tempDir, name)
	err := os.MkdirAll(repoPath, 0750)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	g.runGitCommand(repoPath, "init", "--initial-branch=main")
	g.runGitCommand(repoPath, "config", "user.name", "Test User")
	g.runGitCommand(repoPath, "config", "user.email", "test@example.com")

	err = os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("# Test Repository\n"), 0600)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	g.runGitCommand(repoPath, "add", "README.md")
	g.runGitCommand(repoPath, "commit", "-m", "Initial commit")

	return &GitTestRepository{
		Name:     name,
		Path:     repoPath,
		CloneURL: fmt.Sprintf("file://%s", repoPath),
	}
}

// CommitRepositoryList commits a JSON repository list to filename
func (g *GitTestHelper) CommitRepositoryList(
	repo *GitTestRepository, filename string, repos []repository.PartialRepository, commitMessage string) {
	jsonData, err := json.MarshalIndent(repos, "", "  ")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	filePath := filepath.Join(repo.Path, filename)
	err = os.MkdirAll(filepath.Dir(filePath), 0750)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	err = os.WriteFile(filePath, jsonData, 0600)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	g.runGitCommand(repo.Path, "add", filename)
	g.runGitCommand(repo.Path, "commit", "-m", commitMessage)
}

// CreateBranch creates a new branch and switches to it
func (g *GitTestHelper) CreateBranch(repo *GitTestRepository, branchName string) {
	g.runGitCommand(repo.Path, "checkout", "-b", branchName)
}

// SwitchBranch switches to an existing branch
func (g *GitTestHelper) SwitchBranch(repo *GitTestRepository, branchName string) {
	g.runGitCommand(repo.Path, "checkout", branchName)
}

// CleanupRepositories removes all test repositories
func (g *GitTestHelper) CleanupRepositories() error {
	return os.RemoveAll(g.tempDir)
}

func (g *GitTestHelper) runGitCommand(dir string, args ...string) {
	cmd := exec.CommandContext(g.ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	gomega.Expect(err).NotTo(gomega.HaveOccurred(),
		"Git command failed: %s\nOutput: %s", cmd.String(), string(output))
}
