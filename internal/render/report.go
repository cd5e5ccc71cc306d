package render

// Skipped records one render context abandoned under PolicySkip.
type Skipped struct {
	OutputPath string
	Layout     string
	Message    string
}

// Report summarizes a Process run.
type Report struct {
	// Processed counts content items visited, posts and pages alike.
	Processed int
	Written   []string
	Copied    []string
	Unchanged []string
	Skipped   []Skipped
}

func (r *Report) skip(outputPath, layout string, err error) {
	r.Skipped = append(r.Skipped, Skipped{OutputPath: outputPath, Layout: layout, Message: err.Error()})
}

// HasSkips reports whether any context was abandoned.
func (r *Report) HasSkips() bool { return r != nil && len(r.Skipped) > 0 }
