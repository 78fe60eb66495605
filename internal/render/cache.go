package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// rendererSet pools glamour renderers built from one Options value.
// A TermRenderer is not safe for concurrent Render calls, so each caller
// borrows its own. err is set when the options cannot build a renderer;
// every later call fails fast with it and the formatter falls back to plain.
type rendererSet struct {
	opts Options
	pool sync.Pool
	err  error
}

func newRendererSet(opts Options) *rendererSet {
	s := &rendererSet{opts: opts}
	first, err := createRenderer(opts)
	if err != nil {
		s.err = err
		return s
	}
	s.pool.Put(first)
	return s
}

func (s *rendererSet) borrow() (*glamour.TermRenderer, error) {
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.pool.Get().(*glamour.TermRenderer); ok {
		return r, nil
	}
	return createRenderer(s.opts)
}

func (s *rendererSet) release(r *glamour.TermRenderer) {
	if r != nil {
		s.pool.Put(r)
	}
}

// rendererCache maps option sets to their renderer pools. Options is
// comparable, so it keys the map directly. The chat only varies Width
// (terminal size) and Style (markdown.style, GLAMOUR_STYLE).
type rendererCache struct {
	mu   sync.Mutex
	sets map[Options]*rendererSet
}

var renderers = &rendererCache{sets: make(map[Options]*rendererSet)}

func (c *rendererCache) set(opts Options) *rendererSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sets[opts]
	if !ok {
		s = newRendererSet(opts)
		c.sets[opts] = s
	}
	return s
}

// createRenderer builds a TermRenderer for opts
func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops every renderer pool, including remembered failures.
func ClearCache() {
	renderers.mu.Lock()
	renderers.sets = make(map[Options]*rendererSet)
	renderers.mu.Unlock()
}

// CacheSize returns the number of option sets seen since the last clear.
func CacheSize() int {
	renderers.mu.Lock()
	defer renderers.mu.Unlock()
	return len(renderers.sets)
}
