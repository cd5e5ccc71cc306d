package render

// Transformer rewrites rendered page HTML. Transformers run in order, each
// receiving the previous one's output.
type Transformer interface {
	Transform(html string) (string, error)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(html string) (string, error)

func (f TransformerFunc) Transform(html string) (string, error) { return f(html) }
