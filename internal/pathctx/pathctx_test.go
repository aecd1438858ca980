package pathctx_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gur-shatz/empdir/internal/pathctx"
)

var _ = Describe("Resolve", func() {
	DescribeTable("version and color prefix",
		func(path, version, color string) {
			Expect(pathctx.Resolve(path)).To(Equal(pathctx.Context{Version: version, Color: color}))
		},
		Entry("v1/blue root", "/v1/blue/", "v1", "blue"),
		Entry("v2/pink root", "/v2/pink/", "v2", "pink"),
		Entry("v1/blue without trailing slash", "/v1/blue", "v1", "blue"),
		Entry("v2/pink endpoint", "/v2/pink/addemp", "v2", "pink"),
		Entry("v1/pink nested", "/v1/pink/fetchdata/extra", "v1", "pink"),
	)

	DescribeTable("color-only prefix",
		func(path, color string) {
			pc := pathctx.Resolve(path)
			Expect(pc.Version).To(BeEmpty())
			Expect(pc.Color).To(Equal(color))
		},
		Entry("blue root", "/blue/", "blue"),
		Entry("pink bare", "/pink", "pink"),
		Entry("blue endpoint", "/blue/getemp", "blue"),
		Entry("unknown version falls through to color", "/blue/v1/about", "blue"),
	)

	DescribeTable("no prefix",
		func(path string) {
			Expect(pathctx.Resolve(path).IsZero()).To(BeTrue())
		},
		Entry("root", "/"),
		Entry("empty", ""),
		Entry("plain endpoint", "/addemp"),
		Entry("palette color that is not route-eligible", "/green/addemp"),
		Entry("lime", "/lime/"),
		Entry("unsupported version", "/v3/blue/about"),
		Entry("token must be a whole segment", "/blueberry"),
		Entry("version must be a whole segment", "/v1blue/"),
		Entry("version without color", "/v1/"),
		Entry("case sensitive", "/Blue/"),
		Entry("not anchored mid-path", "/about/blue"),
	)

	It("never sets version without color", func() {
		for _, p := range []string{"/v1", "/v2/", "/v1/green/", "/v2/about"} {
			pc := pathctx.Resolve(p)
			if pc.Version != "" {
				Expect(pc.Color).NotTo(BeEmpty())
			}
		}
	})
})

var _ = Describe("CompleteURL", func() {
	DescribeTable("prefix precedence",
		func(pc pathctx.Context, endpoint, want string) {
			Expect(pc.CompleteURL(endpoint)).To(Equal(want))
		},
		Entry("version and color", pathctx.Context{Version: "v2", Color: "pink"}, "addemp", "/v2/pink/addemp"),
		Entry("color only", pathctx.Context{Color: "blue"}, "addemp", "/blue/addemp"),
		Entry("no context", pathctx.Context{}, "addemp", "/addemp"),
		Entry("leading slash stripped", pathctx.Context{Color: "blue"}, "/getemp", "/blue/getemp"),
		Entry("several leading slashes stripped", pathctx.Context{}, "//about", "/about"),
		Entry("empty endpoint", pathctx.Context{Version: "v1", Color: "blue"}, "", "/v1/blue/"),
	)

	It("round-trips through Resolve", func() {
		for _, pc := range []pathctx.Context{
			{Version: "v1", Color: "blue"},
			{Version: "v2", Color: "pink"},
			{Color: "blue"},
			{},
		} {
			Expect(pathctx.Resolve(pc.CompleteURL("fetchdata"))).To(Equal(pc))
		}
	})
})

var _ = Describe("Middleware", func() {
	It("stores the resolved context before the handler runs", func() {
		var seen pathctx.Context
		h := pathctx.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = pathctx.FromContext(r.Context())
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v2/pink/about", nil))
		Expect(seen).To(Equal(pathctx.Context{Version: "v2", Color: "pink"}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/about", nil))
		Expect(seen.IsZero()).To(BeTrue())
	})

	It("FromContext returns the zero value when nothing is stored", func() {
		Expect(pathctx.FromContext(context.Background()).IsZero()).To(BeTrue())
	})
})
