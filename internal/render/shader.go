package render

import (
	_ "embed"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed boxes.kage
var boxesSource []byte

// Uniform names declared by boxes.kage.
const (
	uniformResolution = "Resolution"
	uniformTime       = "Time"
	uniformAudioFreq  = "AudioFreq"
	uniformAudioAvg   = "AudioAvg"
)

// CompileFunc builds a shader from Kage source.
type CompileFunc func(src []byte) (*ebiten.Shader, error)

// compile builds the box shader with fn, wrapping failures in a
// *ShaderBuildError.
func compile(fn CompileFunc, name string, src []byte) (*ebiten.Shader, error) {
	s, err := fn(src)
	if err != nil {
		return nil, &ShaderBuildError{Name: name, Err: err}
	}
	return s, nil
}
