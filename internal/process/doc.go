// Package process terminates headless Chrome together with its renderer and
// GPU helpers, which a plain kill of the browser PID leaves running.
package process
