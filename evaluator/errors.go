package evaluator

import (
	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/lexer"
)

// errAt builds an Evaluate-kind error tagged with tok's location.
func (e *Evaluator) errAt(tok lexer.Token, message string) *errors.Error {
	loc := tok.Location
	return errors.NewAt(errors.Evaluate, message, loc.String(), loc.Line, loc.Column)
}
