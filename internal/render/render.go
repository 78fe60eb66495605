package render

import "strings"

// Markdown renders markdown for terminal display using a pooled renderer.
// Leading and trailing blank lines added by glamour are trimmed.
func Markdown(content string, opts Options) (string, error) {
	set := renderers.set(opts)
	renderer, err := set.borrow()
	if err != nil {
		return "", err
	}
	defer set.release(renderer)

	out, err := renderer.Render(content)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
