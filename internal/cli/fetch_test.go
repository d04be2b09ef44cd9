package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/gemcli/internal/gemini"
	"github.com/studiowebux/gemcli/internal/gemini/geminitest"
)

const sampleBody = "# Title\n\nA paragraph that is long enough to wrap\n=> /next Next page\n=> gemini://other.example/\n"

func staticTransact(body string) func(context.Context, *url.URL) (*gemini.Response, error) {
	return func(_ context.Context, u *url.URL) (*gemini.Response, error) {
		return &gemini.Response{
			URL:       u,
			Status:    gemini.Status{Class: gemini.ClassSuccess, Code: "20", Meta: "text/gemini"},
			MediaType: gemini.MediaType{Type: gemini.MediaTypeGemtext, Charset: "utf-8"},
			Body:      body,
		}, nil
	}
}

func TestFetch_TextOutput(t *testing.T) {
	var out bytes.Buffer
	err := Fetch(context.Background(), FetchOptions{
		URL:      "capsule.example/",
		Width:    20,
		Transact: staticTransact(sampleBody),
		Stdout:   &out,
	})
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"# Title",
		"",
		"A paragraph that is",
		"long enough to wrap",
		"=> Next page /next",
		"=> gemini://other.e…",
		"",
	}, "\n")
	if out.String() != want {
		t.Errorf("Fetch() output:\n%q\nwant:\n%q", out.String(), want)
	}
	if strings.Contains(out.String(), "\x1b[") {
		t.Error("Output to a buffer should not contain escape sequences")
	}
}

func TestFetch_StructuredOutput(t *testing.T) {
	tests := []struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		{OutputJSON, json.Unmarshal},
		{OutputYAML, yaml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			err := Fetch(context.Background(), FetchOptions{
				URL:      "gemini://capsule.example/",
				Output:   tt.format,
				Transact: staticTransact(sampleBody),
				Stdout:   &out,
			})
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}

			var doc document
			if err := tt.unmarshal(out.Bytes(), &doc); err != nil {
				t.Fatalf("failed to parse %s output: %v\n%s", tt.format, err, out.String())
			}
			if doc.URL != "gemini://capsule.example/" || doc.Status != "20" || doc.Charset != "utf-8" {
				t.Errorf("Unexpected document header: %+v", doc)
			}
			if len(doc.Lines) != 5 {
				t.Fatalf("Expected 5 lines, got %d", len(doc.Lines))
			}
			if doc.Lines[3].Kind != "link" || doc.Lines[3].URL != "/next" || doc.Lines[3].Name != "Next page" {
				t.Errorf("Unexpected link line: %+v", doc.Lines[3])
			}
		})
	}
}

func TestFetch_RawOutput(t *testing.T) {
	var out bytes.Buffer
	err := Fetch(context.Background(), FetchOptions{
		URL:      "gemini://capsule.example/",
		Output:   "RAW",
		Transact: staticTransact(sampleBody),
		Stdout:   &out,
	})
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if out.String() != sampleBody {
		t.Errorf("raw output = %q", out.String())
	}
}

func TestFetch_UnknownOutput(t *testing.T) {
	err := Fetch(context.Background(), FetchOptions{
		URL:      "gemini://capsule.example/",
		Output:   "html",
		Transact: staticTransact(sampleBody),
		Stdout:   &bytes.Buffer{},
	})
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("Expected unknown output format error, got %v", err)
	}
}

func TestFetch_TransactionError(t *testing.T) {
	var out bytes.Buffer
	err := Fetch(context.Background(), FetchOptions{
		URL: "gemini://capsule.example/missing",
		Transact: func(context.Context, *url.URL) (*gemini.Response, error) {
			return nil, &gemini.Error{Kind: gemini.KindPermanentFailure, Code: "51", Meta: "Not found"}
		},
		Stdout: &out,
	})

	if !errors.Is(err, gemini.ErrPermanentFailure) {
		t.Errorf("Expected permanent failure, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Nothing should be printed on failure, got %q", out.String())
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	called := false
	err := Fetch(context.Background(), FetchOptions{
		URL: "gemini://%zz",
		Transact: func(context.Context, *url.URL) (*gemini.Response, error) {
			called = true
			return nil, nil
		},
		Stdout: &bytes.Buffer{},
	})
	if err == nil {
		t.Error("Expected an error for a malformed URL")
	}
	if called {
		t.Error("Transact should not run for a malformed URL")
	}
}

func TestFetch_RealServer(t *testing.T) {
	srv := geminitest.NewServer(t, geminitest.Static("20 text/gemini", "hello\n=> /a A\n"))
	client := gemini.NewClient(nil, nil)

	var out bytes.Buffer
	err := Fetch(context.Background(), FetchOptions{
		URL:      srv.URL("/"),
		Width:    40,
		Transact: client.Transact,
		Stdout:   &out,
	})
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if out.String() != "hello\n=> A /a\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestResolveWidth(t *testing.T) {
	if got := resolveWidth(33, &bytes.Buffer{}); got != 33 {
		t.Errorf("explicit width = %d, want 33", got)
	}
	if got := resolveWidth(0, &bytes.Buffer{}); got != defaultWidth {
		t.Errorf("width for a non-terminal = %d, want %d", got, defaultWidth)
	}
	if isTerminal(&bytes.Buffer{}) {
		t.Error("A buffer is not a terminal")
	}
}
