package dot

import (
	"github.com/goccy/go-graphviz"

	"github.com/revdot/revdot/pkg/errors"
)

// Validate parses the generated text back through graphviz. It catches
// malformed output (unbalanced quoting, bad statements) without rendering
// anything.
func Validate(text string) error {
	g, err := graphviz.ParseBytes([]byte(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "generated dot does not parse")
	}
	return g.Close()
}
