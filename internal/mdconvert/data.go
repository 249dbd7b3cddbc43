package mdconvert

// Representation

type ConversionResult struct {
	markdown string
	plain    string
}

func NewConversionResult(markdown string, plain string) ConversionResult {
	return ConversionResult{
		markdown: markdown,
		plain:    plain,
	}
}

// Markdown is the CommonMark rendition of the fragment.
func (c ConversionResult) Markdown() string {
	return c.markdown
}

// Plain is the fragment's text with whitespace runs collapsed to single spaces.
func (c ConversionResult) Plain() string {
	return c.plain
}
