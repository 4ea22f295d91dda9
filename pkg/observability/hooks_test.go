package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// recorder counts the events it receives.
type recorder struct {
	NoopProjectHooks
	NoopCacheHooks
	NoopHTTPHooks
	imports, hits, requests int
}

func (r *recorder) OnImportStart(context.Context, string)             { r.imports++ }
func (r *recorder) OnCacheHit(context.Context, string)                { r.hits++ }
func (r *recorder) OnRequest(context.Context, string, string, string) { r.requests++ }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	if _, ok := Project().(NoopProjectHooks); !ok {
		t.Errorf("Project() = %T", Project())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T", HTTP())
	}

	Project().OnImportComplete(ctx, "users.json", "json", 12, time.Second, nil)
	Project().OnExportComplete(ctx, "out.yaml", "yaml", 128, time.Second, nil)
	Cache().OnCacheSet(ctx, "http", 1024)
	HTTP().OnResponse(ctx, "GET", "api.example.com", "/users", 200, time.Second)
	HTTP().OnError(ctx, "GET", "api.example.com", "/users", nil)
}

func TestSetAll(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()

	r := &recorder{}
	SetAll(r)
	Project().OnImportStart(ctx, "a.json")
	Cache().OnCacheHit(ctx, "doc")
	HTTP().OnRequest(ctx, "GET", "h", "/")
	HTTP().OnRequest(ctx, "GET", "h", "/x")

	if r.imports != 1 || r.hits != 1 || r.requests != 2 {
		t.Errorf("recorded imports=%d hits=%d requests=%d", r.imports, r.hits, r.requests)
	}

	Reset()
	Project().OnImportStart(ctx, "b.json")
	if r.imports != 1 {
		t.Error("Reset should detach registered hooks")
	}
}

func TestSetIndividually(t *testing.T) {
	t.Cleanup(Reset)

	r := &recorder{}
	SetCacheHooks(r)
	if Cache() != CacheHooks(r) {
		t.Error("SetCacheHooks did not register")
	}
	if _, ok := Project().(NoopProjectHooks); !ok {
		t.Error("SetCacheHooks should not touch project hooks")
	}
}

func TestSetNilIsIgnored(t *testing.T) {
	t.Cleanup(Reset)

	r := &recorder{}
	SetProjectHooks(r)
	SetProjectHooks(nil)
	SetAll(nil)
	if Project() != ProjectHooks(r) {
		t.Error("nil hooks replaced the registered ones")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := LogHooks{Logger: log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})}
	ctx := context.Background()

	h.OnImportComplete(ctx, "users.json", "json", 7, time.Millisecond, nil)
	h.OnExportComplete(ctx, "/ro/out.json", "json", 0, 0, errors.New("permission denied"))
	h.OnCacheMiss(ctx, "http")
	h.OnResponse(ctx, "GET", "example.com", "/data", 503, time.Second)

	out := buf.String()
	for _, want := range []string{"import done", "nodes=7", "export failed", "permission denied", "cache miss", "status=503"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
