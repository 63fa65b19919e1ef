package integration

import (
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/template-registry-server/internal/config"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/test-integration/template-api/helpers"
)

var _ = Describe("Repository Providers", Label("providers"), func() {
	var (
		tempDir      string
		manifests    *helpers.ManifestServer
		serverHelper *helpers.ServerTestHelper
		goURL        string
		appsodyURL   string
	)

	startServer := func(providers ...config.ProviderConfig) {
		configPath := helpers.WriteConfig(tempDir, providers...)

		var err error
		serverHelper, err = helpers.NewServerTestHelper(ctx, configPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	}

	BeforeEach(func() {
		tempDir = createTempDir("template-providers-test-")

		manifests = helpers.NewManifestServer()
		goURL = manifests.AddManifest("/go/index.json", helpers.Descriptor("go-web", "Codewind"))
		appsodyURL = manifests.AddManifest("/appsody/index.json", helpers.Descriptor("nodejs-express", "Appsody"))
	})

	AfterEach(func() {
		if serverHelper != nil {
			Expect(serverHelper.StopServer()).To(Succeed())
			serverHelper = nil
		}
		manifests.Close()
		cleanupTempDir(tempDir)
	})

	expectProviderRepositories := func() {
		var repos []repository.Repository
		Eventually(func() []repository.Repository {
			serverHelper.GetTemplates("")
			repos = serverHelper.GetRepositories()
			return repos
		}, 10*time.Second, 200*time.Millisecond).Should(HaveLen(2))

		Expect(repos[0].URL).To(Equal(goURL))
		Expect(repos[0].Protected).To(BeTrue())
		Expect(repos[0].IsEnabled()).To(BeTrue())
		Expect(repos[0].ProjectStyles).To(ConsistOf("Codewind"))
		Expect(repos[1].URL).To(Equal(appsodyURL))
		Expect(repos[1].ProjectStyles).To(ConsistOf("Appsody"))

		Expect(serverHelper.GetTemplates("")).To(HaveLen(2))
	}

	Context("File Provider", func() {
		It("folds repositories from a YAML list into the repository list", func() {
			listPath := helpers.WriteRepositoryListFile(tempDir, "repositories.yaml", []repository.PartialRepository{
				{URL: goURL, Description: "Go templates"},
				{URL: appsodyURL, Description: "Appsody templates"},
			})

			startServer(config.ProviderConfig{
				Name: "local-file",
				File: &config.FileConfig{Path: listPath},
			})

			expectProviderRepositories()
		})

		It("refuses to delete provider repositories", func() {
			listPath := helpers.WriteRepositoryListFile(tempDir, "repositories.yaml", []repository.PartialRepository{
				{URL: goURL, Description: "Go templates"},
			})

			startServer(config.ProviderConfig{
				Name: "local-file",
				File: &config.FileConfig{Path: listPath},
			})

			Eventually(func() []repository.Repository {
				serverHelper.GetTemplates("")
				return serverHelper.GetRepositories()
			}, 10*time.Second, 200*time.Millisecond).Should(HaveLen(1))

			status, _ := serverHelper.DeleteRepository(goURL)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(serverHelper.GetRepositories()).To(HaveLen(1))
		})

		It("keeps serving when the list file is missing", func() {
			startServer(config.ProviderConfig{
				Name: "missing-file",
				File: &config.FileConfig{Path: filepath.Join(tempDir, "does-not-exist.json")},
			})

			Expect(serverHelper.GetTemplates("")).To(BeEmpty())
			Expect(serverHelper.GetRepositories()).To(BeEmpty())
		})
	})

	Context("API Provider", func() {
		It("folds repositories served by an HTTP endpoint", func() {
			endpoint := manifests.AddRepositoryList("/repositories.json",
				repository.PartialRepository{URL: goURL, Description: "Go templates"},
				repository.PartialRepository{URL: appsodyURL, Description: "Appsody templates"},
			)

			startServer(config.ProviderConfig{
				Name: "remote-api",
				API:  &config.APIConfig{Endpoint: endpoint},
			})

			expectProviderRepositories()
		})
	})

	Context("Git Provider", func() {
		var (
			gitHelper *helpers.GitTestHelper
			gitRepo   *helpers.GitTestRepository
		)

		BeforeEach(func() {
			gitHelper = helpers.NewGitTestHelper(ctx)
			gitRepo = gitHelper.CreateRepository("template-lists")
		})

		AfterEach(func() {
			Expect(gitHelper.CleanupRepositories()).To(Succeed())
		})

		It("folds repositories from a list committed to a branch", func() {
			gitHelper.CommitRepositoryList(gitRepo, "lists/repositories.json", []repository.PartialRepository{
				{URL: goURL, Description: "Go templates"},
				{URL: appsodyURL, Description: "Appsody templates"},
			}, "Add repository list")

			startServer(config.ProviderConfig{
				Name: "git-list",
				Git: &config.GitConfig{
					Repository: gitRepo.CloneURL,
					Branch:     "main",
					Path:       "lists/repositories.json",
				},
			})

			expectProviderRepositories()
		})

		It("reads the list from the configured branch only", func() {
			gitHelper.CommitRepositoryList(gitRepo, "repositories.json", []repository.PartialRepository{
				{URL: goURL},
			}, "Main list")
			gitHelper.CreateBranch(gitRepo, "staging")
			gitHelper.CommitRepositoryList(gitRepo, "repositories.json", []repository.PartialRepository{
				{URL: goURL},
				{URL: appsodyURL},
			}, "Staging list")
			gitHelper.SwitchBranch(gitRepo, "main")

			startServer(config.ProviderConfig{
				Name: "git-main",
				Git: &config.GitConfig{
					Repository: gitRepo.CloneURL,
					Branch:     "main",
					Path:       "repositories.json",
				},
			})

			Eventually(func() []repository.Repository {
				serverHelper.GetTemplates("")
				return serverHelper.GetRepositories()
			}, 10*time.Second, 200*time.Millisecond).Should(HaveLen(1))
			Expect(serverHelper.GetRepositories()[0].URL).To(Equal(goURL))
		})
	})
})
