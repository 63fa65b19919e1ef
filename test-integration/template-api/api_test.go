package integration

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/template-registry-server/internal/batch"
	"github.com/stacklok/template-registry-server/test-integration/template-api/helpers"
)

var _ = Describe("Template Repository API", Label("api"), func() {
	var (
		tempDir      string
		manifests    *helpers.ManifestServer
		serverHelper *helpers.ServerTestHelper
		goURL        string
		appsodyURL   string
	)

	BeforeEach(func() {
		tempDir = createTempDir("template-api-test-")

		manifests = helpers.NewManifestServer()
		goURL = manifests.AddManifest("/go/index.json",
			helpers.Descriptor("go-web", "Codewind"),
			helpers.Descriptor("go-cli", "Codewind"),
		)
		appsodyURL = manifests.AddManifest("/appsody/index.json",
			helpers.Descriptor("nodejs-express", "Appsody"),
		)

		configPath := helpers.WriteConfig(tempDir)

		var err error
		serverHelper, err = helpers.NewServerTestHelper(ctx, configPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		if serverHelper != nil {
			Expect(serverHelper.StopServer()).To(Succeed())
		}
		manifests.Close()
		cleanupTempDir(tempDir)
	})

	It("starts with an empty repository list when seeding is off", func() {
		Expect(serverHelper.GetRepositories()).To(BeEmpty())
		Expect(serverHelper.GetTemplates("")).To(BeEmpty())
	})

	It("adds repositories and aggregates their templates", func() {
		status, body := serverHelper.AddRepository(goURL, "Go templates")
		Expect(status).To(Equal(http.StatusCreated), string(body))
		status, body = serverHelper.AddRepository(appsodyURL, "Appsody templates")
		Expect(status).To(Equal(http.StatusCreated), string(body))

		repos := serverHelper.GetRepositories()
		Expect(repos).To(HaveLen(2))
		Expect(repos[0].URL).To(Equal(goURL))
		Expect(repos[0].ProjectStyles).To(ConsistOf("Codewind"))
		Expect(repos[1].ProjectStyles).To(ConsistOf("Appsody"))

		all := serverHelper.GetTemplates("")
		Expect(all).To(HaveLen(3))
		Expect(all[0].SourceURL).To(Equal(goURL))

		Expect(serverHelper.GetStyles()).To(ConsistOf("Codewind", "Appsody"))

		appsody := serverHelper.GetTemplates("Appsody")
		Expect(appsody).To(HaveLen(1))
		Expect(appsody[0].Label).To(Equal("nodejs-express"))
	})

	It("rejects invalid, duplicate and unreachable repositories", func() {
		status, _ := serverHelper.AddRepository("not a url", "")
		Expect(status).To(Equal(http.StatusBadRequest))

		status, _ = serverHelper.AddRepository(manifests.URL("/missing.json"), "")
		Expect(status).To(Equal(http.StatusBadRequest))

		status, _ = serverHelper.AddRepository(goURL, "")
		Expect(status).To(Equal(http.StatusCreated))
		status, _ = serverHelper.AddRepository(goURL, "")
		Expect(status).To(Equal(http.StatusConflict))

		Expect(serverHelper.GetRepositories()).To(HaveLen(1))
	})

	It("deletes repositories by URL", func() {
		status, _ := serverHelper.AddRepository(goURL, "")
		Expect(status).To(Equal(http.StatusCreated))

		status, _ = serverHelper.DeleteRepository(goURL)
		Expect(status).To(Equal(http.StatusOK))
		Expect(serverHelper.GetRepositories()).To(BeEmpty())
		Expect(serverHelper.GetTemplates("")).To(BeEmpty())

		status, _ = serverHelper.DeleteRepository(goURL)
		Expect(status).To(Equal(http.StatusNotFound))
	})

	It("applies batch updates and reports each result", func() {
		for _, u := range []string{goURL, appsodyURL} {
			status, _ := serverHelper.AddRepository(u, "")
			Expect(status).To(Equal(http.StatusCreated))
		}

		status, results := serverHelper.BatchUpdate([]batch.Operation{
			{Op: "enable", URL: goURL, Value: "false"},
			{Op: "enable", URL: "https://unknown.example.com/index.json", Value: "true"},
		})
		Expect(status).To(Equal(http.StatusMultiStatus))
		Expect(results).To(HaveLen(2))
		Expect(results[0].Status).To(Equal(http.StatusOK))
		Expect(results[1].Status).To(Equal(http.StatusNotFound))

		templates := serverHelper.GetTemplates("")
		Expect(templates).To(HaveLen(1))
		Expect(templates[0].SourceURL).To(Equal(appsodyURL))

		status, _ = serverHelper.BatchUpdate([]batch.Operation{{Op: "enable", URL: goURL, Value: "true"}})
		Expect(status).To(Equal(http.StatusMultiStatus))
		Expect(serverHelper.GetTemplates("")).To(HaveLen(3))
	})
})
