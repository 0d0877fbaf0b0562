package media

// Result is the uniform outcome of every processing operation. Exactly one of
// the success/failure states holds: a successful result never carries an
// error message and a failed result never carries an output path.
type Result struct {
	Success        bool                   `json:"success"`
	OutputPath     string                 `json:"outputPath,omitempty"`
	ErrorMessage   string                 `json:"errorMessage,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	ProcessedFiles []string               `json:"processedFiles,omitempty"`
	ProcessingTime float64                `json:"processingTime"` // seconds, 0 when not measured
	JobID          string                 `json:"jobId,omitempty"`
}

// Succeed builds a success result. outputPath may be empty for operations
// that produce no single artifact (queued jobs, thumbnail batches).
func Succeed(outputPath string) *Result {
	r := &Result{
		Success:  true,
		Metadata: map[string]interface{}{},
	}
	if outputPath != "" {
		r.OutputPath = outputPath
		r.ProcessedFiles = []string{outputPath}
	}
	return r
}

// Failure builds a failed result carrying the given message.
func Failure(message string) *Result {
	return &Result{
		Success:      false,
		ErrorMessage: message,
		Metadata:     map[string]interface{}{},
	}
}

// IsSuccess reports whether the operation succeeded.
func (r *Result) IsSuccess() bool { return r.Success }

// WithMeta attaches a metadata entry and returns the result for chaining.
func (r *Result) WithMeta(key string, value interface{}) *Result {
	if r.Metadata == nil {
		r.Metadata = map[string]interface{}{}
	}
	r.Metadata[key] = value
	return r
}

// WithFiles records the ordered list of produced artifact paths.
func (r *Result) WithFiles(paths []string) *Result {
	r.ProcessedFiles = paths
	return r
}
