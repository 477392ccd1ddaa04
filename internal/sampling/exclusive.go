package sampling

import (
	"sync"

	"github.com/ossf/entropy-analysis/internal/entropysource"
)

// exclusiveSource serialises every call into the wrapped source.
type exclusiveSource struct {
	mu  sync.Mutex
	src entropysource.Source
}

// Exclusive wraps src so that each Fill or Reset owns it for its duration.
// Sources are generally stateful and unsafe to share between goroutines.
func Exclusive(src entropysource.Source) entropysource.Source {
	if e, ok := src.(*exclusiveSource); ok {
		return e
	}
	return &exclusiveSource{src: src}
}

func (e *exclusiveSource) Fill(p []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src.Fill(p)
}

func (e *exclusiveSource) Name() string {
	return entropysource.Name(e.src)
}

func (e *exclusiveSource) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	entropysource.Reset(e.src)
}

func (e *exclusiveSource) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return entropysource.Close(e.src)
}
