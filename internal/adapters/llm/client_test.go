package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/haggle/internal/adapters/llm"
	"github.com/okian/haggle/internal/domain/prompt"
	. "github.com/smartystreets/goconvey/convey"
)

// ShouldNotWrap is the negation of the library's ShouldWrap: it asserts that
// errors.Is reports the first error does NOT wrap the second.
func ShouldNotWrap(actual any, expected ...any) string {
	if len(expected) != 1 {
		return fmt.Sprintf("This assertion requires exactly 1 comparison value (you provided %d).", len(expected))
	}
	actualErr, ok1 := actual.(error)
	expectedErr, ok2 := expected[0].(error)
	if !ok1 || !ok2 {
		return fmt.Sprintf("ShouldNotWrap expects two error values (you provided %T and %T).", actual, expected[0])
	}
	if errors.Is(actualErr, expectedErr) {
		return fmt.Sprintf(`Expected error("%s") NOT to wrap error("%s") but it did.`, actualErr, expectedErr)
	}
	return ""
}

func completion(text string) string {
	return `{"choices":[{"message":{"content":` + mustJSON(text) + `}}]}`
}

func mustJSON(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func TestOpenRouterClient_Complete(t *testing.T) {
	ctx := context.Background()
	msgs := []prompt.Message{{Role: "system", Content: "state the rules"}}

	Convey("Given a healthy upstream", t, func() {
		var got struct {
			Model       string  `json:"model"`
			MaxTokens   int     `json:"max_tokens"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		var auth, method, path string
		var decodeErr error

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			method = r.Method
			path = r.URL.Path
			decodeErr = json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completion("DECISION: ACCEPT\nMESSAGE: deal")))
		}))
		defer srv.Close()

		client := llm.NewOpenRouterClient("key-123",
			llm.WithBaseURL(srv.URL),
			llm.WithModel("test/model"),
			llm.WithMaxTokens(300),
			llm.WithTemperature(0.7),
		)

		Convey("When a completion is requested", func() {
			text, err := client.Complete(ctx, msgs)

			Convey("Then the payload and credentials are as configured", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, "DECISION: ACCEPT\nMESSAGE: deal")
				So(method, ShouldEqual, http.MethodPost)
				So(path, ShouldEqual, "/chat/completions")
				So(decodeErr, ShouldBeNil)
				So(auth, ShouldEqual, "Bearer key-123")
				So(got.Model, ShouldEqual, "test/model")
				So(got.MaxTokens, ShouldEqual, 300)
				So(got.Temperature, ShouldEqual, 0.7)
				So(got.Messages, ShouldHaveLength, 1)
				So(got.Messages[0].Role, ShouldEqual, "system")
				So(got.Messages[0].Content, ShouldEqual, "state the rules")
			})
		})
	})

	Convey("Given an upstream that rejects the credentials", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid key"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := llm.NewOpenRouterClient("bad-key", llm.WithBaseURL(srv.URL))

		Convey("When a completion is requested", func() {
			_, err := client.Complete(ctx, msgs)

			Convey("Then the failure reads as an authorization error", func() {
				So(err, ShouldWrap, llm.ErrAuthorization)
				So(err, ShouldWrap, llm.ErrDependency)
			})
		})
	})

	Convey("Given an upstream that is rate limiting", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := llm.NewOpenRouterClient("key", llm.WithBaseURL(srv.URL))

		_, err := client.Complete(ctx, msgs)
		So(err, ShouldWrap, llm.ErrRateLimited)
		So(err, ShouldWrap, llm.ErrDependency)
	})

	Convey("Given an upstream returning a server error", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := llm.NewOpenRouterClient("key", llm.WithBaseURL(srv.URL))

		_, err := client.Complete(ctx, msgs)
		So(err, ShouldWrap, llm.ErrDependency)
		So(err, ShouldNotWrap, llm.ErrAuthorization)
		So(err, ShouldNotWrap, llm.ErrRateLimited)
	})

	Convey("Given an upstream returning malformed JSON", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": [`))
		}))
		defer srv.Close()

		client := llm.NewOpenRouterClient("key", llm.WithBaseURL(srv.URL))

		_, err := client.Complete(ctx, msgs)
		So(err, ShouldWrap, llm.ErrDependency)
	})

	Convey("Given an upstream returning no choices", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		client := llm.NewOpenRouterClient("key", llm.WithBaseURL(srv.URL))

		_, err := client.Complete(ctx, msgs)
		So(err, ShouldWrap, llm.ErrDependency)
	})

	Convey("Given an upstream that never answers in time", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(completion("too late")))
		}))
		defer srv.Close()

		client := llm.NewOpenRouterClient("key",
			llm.WithBaseURL(srv.URL),
			llm.WithTimeout(20*time.Millisecond),
		)

		Convey("When a completion is requested", func() {
			_, err := client.Complete(ctx, msgs)

			Convey("Then the timeout surfaces as a dependency error", func() {
				So(err, ShouldWrap, llm.ErrDependency)
			})
		})
	})

	Convey("Given a context that is already canceled", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completion("unreachable")))
		}))
		defer srv.Close()

		client := llm.NewOpenRouterClient("key", llm.WithBaseURL(srv.URL))

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.Complete(canceled, msgs)
		So(err, ShouldWrap, llm.ErrDependency)
	})
}
