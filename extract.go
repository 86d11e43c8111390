package coinscrape

// ContentMode selects what is returned for each terminal element of an
// extraction query.
type ContentMode int

// Content modes.
const (
	// ContentHTML returns the inner HTML of the element.
	ContentHTML ContentMode = iota
	// ContentText returns the concatenated text of the element.
	ContentText
)

// ExtractionRequest is one anchor pattern plus the paths to walk from it.
// All paths share a single anchor resolution.
type ExtractionRequest struct {
	Pattern *LocatorPattern
	Paths   []RelationPath
	Mode    ContentMode
}

// Validate returns an error if the request cannot be executed.
func (r *ExtractionRequest) Validate() error {
	if r.Pattern == nil {
		return Errorf(EINVALID, "extraction pattern required")
	}
	if len(r.Paths) == 0 {
		return Errorf(EINVALID, "extraction requires at least one path")
	}
	return nil
}

// Document is a parsed page that several extraction queries can share.
type Document interface {
	// Extract locates the anchor once and returns one string per path, in
	// path order. Any failing path fails the whole query.
	Extract(req *ExtractionRequest) ([]string, error)
}

// Extractor runs extraction queries against raw page content.
type Extractor interface {
	// Parse parses raw once for use by several queries.
	Parse(raw string) (Document, error)

	// Extract parses raw and runs a single query against it.
	Extract(req *ExtractionRequest, raw string) ([]string, error)
}

// Cleaner post-processes extracted text.
type Cleaner interface {
	Clean(text string) string
}
