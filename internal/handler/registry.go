package handler

// Registry keeps handlers in registration order; the first match wins.
type Registry struct {
	handlers []Handler
}

// NewRegistry returns a registry holding hs in order.
func NewRegistry(hs ...Handler) *Registry {
	r := &Registry{}
	for _, h := range hs {
		r.Register(h)
	}
	return r
}

// Default returns the Markdown and JSON handlers.
func Default() *Registry {
	return NewRegistry(Markdown(), JSON())
}

func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Get returns the first handler that accepts path. The boolean is false when
// the file type is unsupported.
func (r *Registry) Get(path string) (Handler, bool) {
	for _, h := range r.handlers {
		if h.CanHandle(path) {
			return h, true
		}
	}
	return nil, false
}
