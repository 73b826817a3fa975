package uploads

import (
	"fmt"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/tus/tusd/v2/pkg/handler"
	"github.com/tus/tusd/v2/pkg/s3store"
)

// ServerConfig configures the resumable-upload listener.
type ServerConfig struct {
	Addr     string // e.g. ":1080"
	BasePath string // e.g. "/files/"
	Bucket   string
	S3       *s3.Client
}

// Server wraps the tus upload server. The protocol itself (create, chunk,
// head, terminate) is handled entirely by tusd; we only install the hooks
// collected in the Registry and forward lifecycle events to its listeners.
type Server struct {
	registry *Registry
	cfg      ServerConfig
}

func NewServer(cfg ServerConfig, registry *Registry) *Server {
	return &Server{registry: registry, cfg: cfg}
}

// Start freezes the registry, builds the tus handler on top of the S3 store
// and begins serving on the configured port. It returns once the listener
// goroutine is running.
func (s *Server) Start() error {
	store := s3store.New(s.cfg.Bucket, s.cfg.S3)
	composer := handler.NewStoreComposer()
	store.UseIn(composer)

	config := handler.Config{
		BasePath:                s.cfg.BasePath,
		StoreComposer:           composer,
		NotifyCompleteUploads:   true,
		NotifyCreatedUploads:    true,
		NotifyTerminatedUploads: true,
		PreUploadCreateCallback: func(hook handler.HookEvent) (handler.HTTPResponse, handler.FileInfoChanges, error) {
			changes := handler.FileInfoChanges{}
			if naming := s.registry.namingFunc(); naming != nil {
				changes.ID = naming(hook)
			}
			return handler.HTTPResponse{}, changes, nil
		},
		PreFinishResponseCallback: func(hook handler.HookEvent) (handler.HTTPResponse, error) {
			if finish := s.registry.finishHandler(); finish != nil {
				return finish(hook)
			}
			return handler.HTTPResponse{}, nil
		},
	}

	h, err := handler.NewHandler(config)
	if err != nil {
		return fmt.Errorf("failed to create upload handler: %v", err)
	}

	s.registry.markStarted()
	go s.forwardEvents(h)

	mux := http.NewServeMux()
	mux.Handle(s.cfg.BasePath, http.StripPrefix(s.cfg.BasePath, h))

	go func() {
		log.Printf("[UPLOAD] listening on %s%s", s.cfg.Addr, s.cfg.BasePath)
		if err := http.ListenAndServe(s.cfg.Addr, mux); err != nil {
			log.Printf("[UPLOAD] server stopped: %v", err)
		}
	}()
	return nil
}

// forwardEvents fans tusd notifications out to the generic listeners.
func (s *Server) forwardEvents(h *handler.Handler) {
	for {
		select {
		case hook := <-h.CreatedUploads:
			s.registry.dispatch(EventUploadCreate, hook)
		case hook := <-h.CompleteUploads:
			s.registry.dispatch(EventUploadFinish, hook)
		case hook := <-h.TerminatedUploads:
			s.registry.dispatch(EventUploadTerminate, hook)
		}
	}
}
