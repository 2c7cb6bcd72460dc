package render

import "fmt"

// ShaderBuildError reports a shader program that failed to compile. Nothing
// is drawn when this happens.
type ShaderBuildError struct {
	Name string
	Err  error
}

func (e *ShaderBuildError) Error() string {
	return fmt.Sprintf("build shader %s: %v", e.Name, e.Err)
}

func (e *ShaderBuildError) Unwrap() error { return e.Err }
