package docx2md

// Option configures a Converter.
type Option func(*Converter)

// WithOutputDir enables persistence: the Markdown file and its images are
// written beneath dir. Without it conversions return the text and the
// normalized images in memory.
func WithOutputDir(dir string) Option {
	return func(c *Converter) {
		c.outputDir = dir
	}
}

// WithAssetDir sets the image directory (default <outputDir>/images_<stem>).
// Images are written there even without WithOutputDir. Image paths in the
// Markdown use its base name.
func WithAssetDir(dir string) Option {
	return func(c *Converter) {
		c.assetDir = dir
	}
}

// WithCaptioner describes every written image, in document order.
func WithCaptioner(captioner Captioner) Option {
	return func(c *Converter) {
		c.captioner = captioner
	}
}

// WithVectorRasterizer replaces the built-in EMF/WMF rasterizer.
func WithVectorRasterizer(r VectorRasterizer) Option {
	return func(c *Converter) {
		c.rasterizer = r
	}
}

// WithPlaceholder sets the caption used when no description is available
// (default: DefaultPlaceholder).
func WithPlaceholder(placeholder string) Option {
	return func(c *Converter) {
		c.placeholder = placeholder
	}
}

// WithLogger sets the diagnostics sink (default: discard).
func WithLogger(logger Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithAltChunks configures whether imported HTML and text chunks are
// rendered (default: true).
func WithAltChunks(enabled bool) Option {
	return func(c *Converter) {
		c.altChunks = enabled
	}
}

// WithEmbeddedWorkbooks configures whether embedded Excel objects in body
// paragraphs are rendered as tables (default: false).
func WithEmbeddedWorkbooks(enabled bool) Option {
	return func(c *Converter) {
		c.workbooks = enabled
	}
}

// WithHeadingSource rewrites emitted headings with the numbered forms the
// source reports for the input file.
func WithHeadingSource(src HeadingSource) Option {
	return func(c *Converter) {
		c.headings = src
	}
}
