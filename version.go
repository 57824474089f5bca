package otelquery

// Version is the current release version of the otelquery instrumentation.
func Version() string {
	return "0.1.0"
}
