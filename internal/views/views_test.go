package views_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gur-shatz/empdir/internal/log"
	"github.com/gur-shatz/empdir/internal/pathctx"
	"github.com/gur-shatz/empdir/internal/store"
	"github.com/gur-shatz/empdir/internal/views"
)

var testLogger = log.New("[test]", false)

func requestWith(pc pathctx.Context) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	return r.WithContext(pathctx.WithContext(r.Context(), pc))
}

var _ = Describe("View", func() {
	It("completes URLs with the request route", func() {
		v := views.View{Route: pathctx.Context{Version: "v2", Color: "pink"}}
		Expect(v.CompleteURL("addemp")).To(Equal("/v2/pink/addemp"))
	})
})

var _ = Describe("Renderer", func() {
	var r *views.Renderer

	BeforeEach(func() {
		var err error
		r, err = views.New("v2", "#f4c2c2", views.WithLogger(testLogger))
		Expect(err).NotTo(HaveOccurred())
	})

	It("loads every embedded page", func() {
		Expect(r.Pages()).To(ConsistOf(
			"about.html", "addemp.html", "addempoutput.html", "error.html",
			"getemp.html", "getempoutput.html", "notfound.html",
		))
	})

	It("injects VERSION and COLOR into every page", func() {
		for _, page := range []string{"about.html", "addemp.html", "getemp.html"} {
			w := httptest.NewRecorder()
			Expect(r.Render(w, requestWith(pathctx.Context{}), http.StatusOK, page, nil)).To(Succeed())
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/html"))
			Expect(w.Body.String()).To(ContainSubstring("background-color: #f4c2c2"))
			Expect(w.Body.String()).To(ContainSubstring("Version v2"))
		}
	})

	DescribeTable("form actions follow the route prefix",
		func(pc pathctx.Context, action string) {
			w := httptest.NewRecorder()
			Expect(r.Render(w, requestWith(pc), http.StatusOK, "addemp.html", nil)).To(Succeed())
			Expect(w.Body.String()).To(ContainSubstring(`action="` + action + `"`))
		},
		Entry("version and color", pathctx.Context{Version: "v1", Color: "blue"}, "/v1/blue/addemp"),
		Entry("color only", pathctx.Context{Color: "pink"}, "/pink/addemp"),
		Entry("no prefix", pathctx.Context{}, "/addemp"),
	)

	It("renders page data and the requested status", func() {
		w := httptest.NewRecorder()
		emp := store.Employee{ID: "E1", FirstName: "Ada", LastName: "Lovelace", PrimarySkill: "math", Location: "London"}
		Expect(r.Render(w, requestWith(pathctx.Context{}), http.StatusOK, "getempoutput.html", emp)).To(Succeed())
		body := w.Body.String()
		for _, s := range []string{"E1", "Ada", "Lovelace", "math", "London"} {
			Expect(body).To(ContainSubstring(s))
		}

		w = httptest.NewRecorder()
		Expect(r.Render(w, requestWith(pathctx.Context{}), http.StatusNotFound, "notfound.html", map[string]string{"ID": "X9"})).To(Succeed())
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("X9"))
	})

	It("escapes user data", func() {
		w := httptest.NewRecorder()
		Expect(r.Render(w, requestWith(pathctx.Context{}), http.StatusOK, "addempoutput.html",
			map[string]string{"Name": "<script>x</script>"})).To(Succeed())
		Expect(w.Body.String()).NotTo(ContainSubstring("<script>x</script>"))
	})

	It("rejects unknown pages without writing", func() {
		w := httptest.NewRecorder()
		err := r.Render(w, requestWith(pathctx.Context{}), http.StatusOK, "missing.html", nil)
		Expect(err).To(MatchError(ContainSubstring(`unknown page "missing.html"`)))
		Expect(w.Body.Len()).To(BeZero())
	})
})

var _ = Describe("Renderer from a directory", func() {
	var dir string

	writeFile := func(name, content string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)).To(Succeed())
	}

	render := func(r *views.Renderer) string {
		w := httptest.NewRecorder()
		Expect(r.Render(w, requestWith(pathctx.Context{}), http.StatusOK, "about.html", nil)).To(Succeed())
		return w.Body.String()
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		writeFile("layout.html", `{{ template "content" . }}`)
		writeFile("about.html", `{{ define "content" }}first {{ .VERSION }}{{ end }}`)
	})

	It("fails on a template that does not parse", func() {
		writeFile("broken.html", `{{ define "content" }}{{ .VERSION {{ end }}`)
		_, err := views.New("v1", "#000000", views.WithDir(dir), views.WithLogger(testLogger))
		Expect(err).To(MatchError(ContainSubstring("broken.html")))
	})

	It("keeps the previous templates when a reload fails", func() {
		r, err := views.New("v1", "#000000", views.WithDir(dir), views.WithLogger(testLogger))
		Expect(err).NotTo(HaveOccurred())

		writeFile("about.html", `{{ define "content" }}{{ .VERSION {{ end }}`)
		Expect(r.Reload()).NotTo(Succeed())
		Expect(render(r)).To(Equal("first v1"))
	})

	It("picks up edits while watching", func() {
		r, err := views.New("v1", "#000000", views.WithDir(dir), views.WithLogger(testLogger))
		Expect(err).NotTo(HaveOccurred())
		Expect(render(r)).To(Equal("first v1"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- r.Watch(ctx) }()

		// Let the watcher start
		time.Sleep(100 * time.Millisecond)
		writeFile("about.html", `{{ define "content" }}second {{ .VERSION }}{{ end }}`)

		Eventually(func() string { return render(r) }, 3*time.Second, 50*time.Millisecond).
			Should(Equal("second v1"))

		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})

	It("Watch returns immediately for embedded templates", func() {
		r, err := views.New("v1", "#000000", views.WithLogger(testLogger))
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Watch(context.Background())).To(Succeed())
	})
})
