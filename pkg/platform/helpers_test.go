package platform

import (
	"sync"
	"testing"

	plugerrors "github.com/go-drift/drift-oauth/pkg/errors"
)

type reportRecorder struct {
	mu     sync.Mutex
	errs   []*plugerrors.PluginError
	panics []*plugerrors.PanicError
}

func (r *reportRecorder) HandleError(err *plugerrors.PluginError) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *reportRecorder) HandlePanic(err *plugerrors.PanicError) {
	r.mu.Lock()
	r.panics = append(r.panics, err)
	r.mu.Unlock()
}

// captureReports installs a recording error handler for the test.
func captureReports(t *testing.T) *[]*plugerrors.PluginError {
	t.Helper()
	rec := &reportRecorder{}
	plugerrors.SetHandler(rec)
	t.Cleanup(func() { plugerrors.SetHandler(nil) })
	return &rec.errs
}

func sendTestEvent(t *testing.T, channel string, data any) {
	t.Helper()
	encoded, err := DefaultCodec.Encode(data)
	if err != nil {
		t.Fatalf("encode event: %v", err)
	}
	if err := HandleEvent(channel, encoded); err != nil {
		t.Fatalf("HandleEvent(%s): %v", channel, err)
	}
}
