package interaction

import (
	"context"
	"sync"
)

// fakeResponder records every outbound call in order. An optional fail map
// makes individual methods report a transport failure.
type fakeResponder struct {
	mu    sync.Mutex
	calls []fakeCall
	fail  map[string]error
}

type fakeCall struct {
	Method    string
	Token     string
	Content   string
	Ephemeral bool
	Deferred  bool
	Comps     []Component
}

func (f *fakeResponder) record(c fakeCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[c.Method]; ok {
		return err
	}
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeResponder) Calls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeCall(nil), f.calls...)
}

func (f *fakeResponder) Acknowledge(_ context.Context, token string, ephemeral, deferred bool) error {
	return f.record(fakeCall{Method: "acknowledge", Token: token, Ephemeral: ephemeral, Deferred: deferred})
}

func (f *fakeResponder) Respond(_ context.Context, token, content string, ephemeral bool, components ...Component) error {
	return f.record(fakeCall{Method: "respond", Token: token, Content: content, Ephemeral: ephemeral, Comps: components})
}

func (f *fakeResponder) FollowUp(_ context.Context, token, content string, ephemeral bool) error {
	return f.record(fakeCall{Method: "followup", Token: token, Content: content, Ephemeral: ephemeral})
}

func (f *fakeResponder) DeleteOriginal(_ context.Context, token string) error {
	return f.record(fakeCall{Method: "delete_original", Token: token})
}
