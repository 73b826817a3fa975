package uploads

import (
	"log"
	"sync"

	"github.com/tus/tusd/v2/pkg/handler"
)

// Upload lifecycle events handlers can attach to.
const (
	EventUploadCreate    = "upload.create"
	EventUploadFinish    = "upload.finish"
	EventUploadTerminate = "upload.terminate"
)

// EventHandler is a generic upload-lifecycle listener.
type EventHandler func(hook handler.HookEvent)

// FinishHandler runs synchronously before the upload server acknowledges a
// completed transfer; its response (or error) is what the client sees.
type FinishHandler func(hook handler.HookEvent) (handler.HTTPResponse, error)

// NamingFunc chooses the storage key for a new upload.
type NamingFunc func(hook handler.HookEvent) string

// Registry is the process-wide dispatch table for the upload server. It is
// assembled once at boot, before the server starts; handlers registered any
// later cannot be captured into the table and are refused with a warning
// instead of a crash. Only components alive for the whole process should
// hold a Registry.
type Registry struct {
	mu        sync.Mutex
	started   bool
	listeners map[string][]EventHandler
	finish    FinishHandler
	naming    NamingFunc
}

func NewRegistry() *Registry {
	return &Registry{
		listeners: make(map[string][]EventHandler),
	}
}

// Register attaches a generic listener for an event. Listeners for the same
// event run in registration order. Returns false when the registration is
// refused.
func (r *Registry) Register(event string, h EventHandler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.accept(event, h == nil) {
		return false
	}
	r.listeners[event] = append(r.listeners[event], h)
	return true
}

// RegisterUploadFinish installs the synchronous completion handler. It is a
// 1:1 override: the last registration wins. The handler is also attached as
// a generic upload.finish listener.
func (r *Registry) RegisterUploadFinish(h FinishHandler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.accept(EventUploadFinish, h == nil) {
		return false
	}
	r.finish = h
	r.listeners[EventUploadFinish] = append(r.listeners[EventUploadFinish], func(hook handler.HookEvent) {
		// the response was already produced on the synchronous path
	})
	return true
}

// RegisterNaming installs the storage-key naming function, last wins.
func (r *Registry) RegisterNaming(fn NamingFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.accept(EventUploadCreate, fn == nil) {
		return false
	}
	r.naming = fn
	return true
}

// accept applies the safety rules; callers hold r.mu. One refused handler
// never aborts startup or blocks other registrations.
func (r *Registry) accept(event string, isNil bool) bool {
	if isNil {
		log.Printf("[UPLOAD] refusing nil handler for %s", event)
		return false
	}
	if r.started {
		log.Printf("[UPLOAD] refusing registration for %s: server already started, handler will never be invoked", event)
		return false
	}
	return true
}

func (r *Registry) markStarted() {
	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
}

func (r *Registry) finishHandler() FinishHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finish
}

func (r *Registry) namingFunc() NamingFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.naming
}

// dispatch invokes every listener for the event in registration order. A
// panicking listener is contained so the rest still run.
func (r *Registry) dispatch(event string, hook handler.HookEvent) {
	r.mu.Lock()
	handlers := r.listeners[event]
	r.mu.Unlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("[UPLOAD] listener for %s panicked: %v", event, rec)
				}
			}()
			h(hook)
		}()
	}
}
