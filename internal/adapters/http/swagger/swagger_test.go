package swagger_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/haggle/internal/adapters/http/swagger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegister(t *testing.T) {
	Convey("Given a mux with the docs routes registered", t, func() {
		mux := http.NewServeMux()
		swagger.Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When /api-docs is fetched", func() {
			res, err := http.Get(srv.URL + "/api-docs")
			So(err, ShouldBeNil)
			defer res.Body.Close()

			body, err := io.ReadAll(res.Body)
			So(err, ShouldBeNil)

			Convey("Then the ReDoc page is served", func() {
				So(res.StatusCode, ShouldEqual, http.StatusOK)
				So(res.Header.Get("Content-Type"), ShouldStartWith, "text/html")
				So(string(body), ShouldContainSubstring, "redoc")
				So(string(body), ShouldContainSubstring, "/openapi.yaml")
			})
		})

		Convey("When /openapi.yaml is fetched", func() {
			res, err := http.Get(srv.URL + "/openapi.yaml")
			So(err, ShouldBeNil)
			defer res.Body.Close()

			body, err := io.ReadAll(res.Body)
			So(err, ShouldBeNil)

			Convey("Then the embedded spec is served", func() {
				So(res.StatusCode, ShouldEqual, http.StatusOK)
				So(res.Header.Get("Content-Type"), ShouldStartWith, "application/yaml")
				So(string(body), ShouldContainSubstring, "openapi:")
				So(string(body), ShouldContainSubstring, "/sessions/{id}/proposal")
			})
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() { swagger.Register(context.Background(), nil) }, ShouldPanic)
	})
}
