package server_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/woozymasta/cs2-exporter/internal/config"
	"github.com/woozymasta/cs2-exporter/internal/exporter"
	"github.com/woozymasta/cs2-exporter/internal/server"
)

func testConfig() *config.Config {
	return &config.Config{
		Target:    config.Target{Host: "127.0.0.1", Port: 27015, Interval: 15 * time.Second},
		Web:       config.Web{Address: "127.0.0.1:0", MetricsPath: "/metrics"},
		RateLimit: config.RateLimit{Count: 0, Window: time.Minute},
	}
}

func get(handler http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

var _ = Describe("Server", func() {
	var (
		cfg   *config.Config
		state *exporter.State
	)

	BeforeEach(func() {
		cfg = testConfig()
		state = exporter.NewState()
	})

	build := func() (*server.Server, http.Handler) {
		srv, err := server.New(cfg, exporter.NewRegistry(state))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = srv.Shutdown(context.Background()) })

		return srv, srv.Run()
	}

	Describe("metrics endpoint", func() {
		It("should serve the current metric set", func() {
			state.Commit(exporter.Online(12, "de_dust2"))
			_, handler := build()

			rec := get(handler, "/metrics", nil)

			Expect(rec.Code).To(Equal(http.StatusOK))
			body := rec.Body.String()
			Expect(body).To(ContainSubstring("cs2_server_up 1"))
			Expect(body).To(ContainSubstring("cs2_player_count 12"))
			Expect(body).To(ContainSubstring(`cs2_current_map_info{map_name="de_dust2"} 1`))
			Expect(body).To(ContainSubstring("cs2_exporter_build_info"))
		})

		It("should reflect a later commit on the next scrape", func() {
			state.Commit(exporter.Online(12, "de_dust2"))
			_, handler := build()
			get(handler, "/metrics", nil)

			state.Commit(exporter.Offline())
			body := get(handler, "/metrics", nil).Body.String()

			Expect(body).To(ContainSubstring("cs2_server_up 0"))
			Expect(body).To(ContainSubstring("cs2_player_count 0"))
			Expect(body).To(ContainSubstring(`cs2_current_map_info{map_name="Offline"} 1`))
		})

		It("should honour a custom metrics path", func() {
			cfg.Web.MetricsPath = "/probe"
			_, handler := build()

			Expect(get(handler, "/probe", nil).Code).To(Equal(http.StatusOK))
			Expect(get(handler, "/metrics", nil).Code).To(Equal(http.StatusNotFound))
		})

		It("should require the bearer token when configured", func() {
			cfg.Web.AuthToken = "secret"
			_, handler := build()

			Expect(get(handler, "/metrics", nil).Code).To(Equal(http.StatusUnauthorized))
			Expect(get(handler, "/metrics", http.Header{"Authorization": {"Bearer nope"}}).Code).
				To(Equal(http.StatusUnauthorized))
			Expect(get(handler, "/metrics", http.Header{"Authorization": {"Bearer secret"}}).Code).
				To(Equal(http.StatusOK))
		})

		It("should leave health and landing open when auth is on", func() {
			cfg.Web.AuthToken = "secret"
			_, handler := build()

			Expect(get(handler, "/healthz", nil).Code).To(Equal(http.StatusOK))
			Expect(get(handler, "/", nil).Code).To(Equal(http.StatusOK))
		})
	})

	Describe("other routes", func() {
		It("should answer health checks", func() {
			_, handler := build()

			rec := get(handler, "/healthz", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("ok"))
		})

		It("should render the landing page", func() {
			_, handler := build()

			rec := get(handler, "/", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/html"))
			Expect(rec.Body.String()).To(ContainSubstring(`href="/metrics"`))
			Expect(rec.Body.String()).To(ContainSubstring("127.0.0.1:27015"))
		})

		It("should 404 unknown paths", func() {
			_, handler := build()

			Expect(get(handler, "/nope", nil).Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("rate limiting", func() {
		It("should reject a client exceeding its budget", func() {
			cfg.RateLimit = config.RateLimit{Count: 2, Window: time.Hour}
			_, handler := build()

			Expect(get(handler, "/healthz", nil).Code).To(Equal(http.StatusOK))
			Expect(get(handler, "/healthz", nil).Code).To(Equal(http.StatusOK))
			Expect(get(handler, "/healthz", nil).Code).To(Equal(http.StatusTooManyRequests))
		})

		It("should track forwarded clients separately when trusting the proxy", func() {
			cfg.RateLimit = config.RateLimit{Count: 1, Window: time.Hour}
			cfg.Web.TrustProxy = true
			_, handler := build()

			a := http.Header{"X-Forwarded-For": {"10.0.0.1"}}
			b := http.Header{"X-Forwarded-For": {"10.0.0.2, 192.168.0.1"}}

			Expect(get(handler, "/healthz", a).Code).To(Equal(http.StatusOK))
			Expect(get(handler, "/healthz", b).Code).To(Equal(http.StatusOK))
			Expect(get(handler, "/healthz", a).Code).To(Equal(http.StatusTooManyRequests))
		})
	})

	Describe("lifecycle", func() {
		It("should serve over a bound listener until shutdown", func() {
			srv, _ := build()
			Expect(srv.Listen()).To(Succeed())

			done := make(chan error, 1)
			go func() { done <- srv.Serve() }()

			var resp *http.Response
			Eventually(func() error {
				var err error
				resp, err = http.Get("http://" + srv.Addr() + "/healthz")
				return err
			}).Should(Succeed())
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			Expect(string(body)).To(Equal("ok"))

			Expect(srv.Shutdown(context.Background())).To(Succeed())
			Eventually(done).Should(Receive(BeNil()))
		})

		It("should fail to listen on a taken port", func() {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			defer ln.Close()

			cfg.Web.Address = ln.Addr().String()
			srv, _ := build()

			Expect(srv.Listen()).To(HaveOccurred())
		})

		It("should refuse to serve before listening", func() {
			srv, _ := build()

			Expect(srv.Serve()).To(HaveOccurred())
		})
	})
})

var _ = Describe("GetRealIP", func() {
	It("should use the remote address by default", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("X-Forwarded-For", "10.0.0.1")

		Expect(server.GetRealIP(req, false)).To(Equal("192.0.2.1"))
	})

	It("should prefer CF-Connecting-IP when trusting the proxy", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("CF-Connecting-IP", "203.0.113.7")
		req.Header.Set("X-Forwarded-For", "10.0.0.1")

		Expect(server.GetRealIP(req, true)).To(Equal("203.0.113.7"))
	})
})
