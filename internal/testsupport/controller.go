package testsupport

import (
	"context"
	"runtime"
	"testing"

	"tagger/internal/config"
	"tagger/internal/file"
	"tagger/internal/tagger"
)

// NewController builds and starts a controller wired to the given
// fakes, stopping it when the test finishes.
func NewController(t testing.TB, cfg *config.Config, client *FakeClient, codec *FakeCodec) *tagger.Controller {
	t.Helper()

	if cfg == nil {
		cfg = NewConfig(t)
	}
	ctrl, err := tagger.New(tagger.Options{
		Config: cfg,
		Client: client,
		Codec:  codec,
	})
	if err != nil {
		t.Fatalf("build controller: %v", err)
	}
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start controller: %v", err)
	}
	t.Cleanup(ctrl.Stop)
	return ctrl
}

// Run executes fn on the control goroutine and waits for it.
func Run(t testing.TB, ctrl *tagger.Controller, fn func()) {
	t.Helper()
	if err := ctrl.PostWait(fn); err != nil {
		t.Fatalf("post to control loop: %v", err)
	}
}

// Settle flushes the control loop several times so chained
// completions (tag reads, fetch callbacks, continuations) all land.
func Settle(t testing.TB, ctrl *tagger.Controller) {
	t.Helper()
	for i := 0; i < 8; i++ {
		runtime.Gosched()
		if err := ctrl.PostWait(func() {}); err != nil {
			t.Fatalf("flush control loop: %v", err)
		}
	}
}

// AddReadyFiles adds paths and waits until every record has left the
// Pending state.
func AddReadyFiles(t testing.TB, ctrl *tagger.Controller, paths ...string) []*file.Record {
	t.Helper()
	var records []*file.Record
	Run(t, ctrl, func() {
		records = ctrl.AddFiles(paths)
	})
	Settle(t, ctrl)
	Run(t, ctrl, func() {
		for _, r := range records {
			if r.State() == file.StatePending {
				t.Errorf("file %s still pending after settle", r.Filename)
			}
		}
	})
	return records
}
