package parser

import (
	"github.com/vivjson/vivjson/errors"
	"github.com/vivjson/vivjson/lexer"
)

// errorAt records a parse error at tok's location and keeps going: the
// parser does not stop at the first error, but the caller (Parse) refuses
// to hand back a usable AST once any error has been recorded.
func (p *Parser) errorAt(tok lexer.Token, message string) {
	loc := tok.Location
	p.errs = append(p.errs, errors.NewAt(errors.Parse, message, loc.String(), loc.Line, loc.Column))
}

func (p *Parser) Errors() []*errors.Error { return p.errs }
