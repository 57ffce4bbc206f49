// Package ast defines the closed set of AST node variants produced by the
// parser. Nodes are a tagged union (a single Node type carrying a Kind tag
// and only the fields relevant to that tag) rather than a hierarchy of
// interfaces: the evaluator dispatches on Kind with one big switch instead of
// a virtual call per node type. Nodes are not modified after parsing.
package ast

import "github.com/vivjson/vivjson/lexer"

// Kind is the closed set of AST node variants.
type Kind int

const (
	Literal Kind = iota
	Identifier
	KeywordNode // break / continue marker
	Blank       // placeholder for an empty ;/,/\n slot
	Binary
	Array
	Block
	Parameter
	Callee
	Call
	Loop
	Get
	Set
	Remove
	Return
	Injection
	ValueNode // pre-evaluated host value wrapped as a node
	CalleeRegistry
)

// BlockType distinguishes how a Block's exit value is produced and how
// control flow propagates out of it.
type BlockType int

const (
	AnonymousBlock BlockType = iota
	PureBlock                // function body: produces a public projection
	LimitedBlock             // if/elseif/else/for body: merges into enclosing frame
	ClassBlock               // reserved; unimplemented
)

// Node is the single tagged-union AST node type. Only the fields that apply
// to a given Kind are populated; see the per-Kind comments below.
type Node struct {
	Kind  Kind
	Token lexer.Token // primary token; carries the node's source location

	// Literal / Identifier / KeywordNode / Blank: Token alone is enough.

	// Binary: infix (and `in`) and unary `not` (Left is a null Literal).
	Left     *Node
	Operator lexer.Kind
	Right    *Node

	// Array: element expressions, left to right. Also reused as the
	// argument list of Call and the parameter list of Callee.
	Values []*Node

	// Block: BlockKind governs scope projection / control-flow propagation;
	// Values holds the statement sequence.
	BlockKind BlockType

	// Parameter: Modifier is FUNCTION, REFERENCE, or lexer.EOS for none.
	Modifier lexer.Kind
	Name     string

	// Callee: Parameter (name+modifier) in NameParam, formal parameters plus
	// trailing Block body in Values (last element is always the body Block).
	NameParam *Node

	// Call: Left is the callee expression (an Identifier, or a KeywordNode
	// standing in for a lowered if/elseif); Values are the arguments.

	// Loop: the lowered `for` form.
	Call       *Node
	Initial    []*Node
	Continuous []*Node
	Statements []*Node
	Each       *Node // loop variable identifier, for `for (x in iter)`
	Iterator   *Node // the iterable expression, for `for (x in iter)`

	// Get: Members is a chain of identifier/literal/computed steps.
	// Set: Members is the write target chain (empty means "write result");
	// Value holds the already-parsed RHS expression.
	Members []*Node
	Value   *Node

	// Remove: Members is the chain whose leaf is deleted; Token carries
	// the `remove` keyword's location.

	// Return: Value is optional.

	// Injection: a host-supplied binding, fed as if by assignment.
	Variable string
	HostLoc  *lexer.Location

	// ValueNode: a literal host value, already evaluated, with optional
	// location (reuses HostLoc).
	Host interface{}

	// CalleeRegistry: a stored function value. Def is the originating
	// Callee node; Env, if non-nil, is the captured defining frame
	// (opaque here to avoid an import cycle with the evaluator's
	// environment type; the evaluator package type-asserts it).
	Def         *Node
	Env         interface{}
	IsReference bool
}

// NewLiteral builds a Literal node from its token.
func NewLiteral(tok lexer.Token) *Node { return &Node{Kind: Literal, Token: tok} }

// NewIdentifier builds an Identifier node from its token.
func NewIdentifier(tok lexer.Token) *Node { return &Node{Kind: Identifier, Token: tok} }

// NewKeyword builds a break/continue marker node.
func NewKeyword(tok lexer.Token) *Node { return &Node{Kind: KeywordNode, Token: tok} }

// NewBlank builds a placeholder node for an elided positional slot.
func NewBlank(tok lexer.Token) *Node { return &Node{Kind: Blank, Token: tok} }

// NewBinary builds a Binary node (also used for unary `not`, with a null
// Literal as Left).
func NewBinary(left *Node, op lexer.Kind, right *Node, tok lexer.Token) *Node {
	return &Node{Kind: Binary, Left: left, Operator: op, Right: right, Token: tok}
}

// NewArray builds an Array node from its element expressions.
func NewArray(values []*Node, tok lexer.Token) *Node {
	return &Node{Kind: Array, Values: values, Token: tok}
}

// NewBlock builds a Block node of the given type.
func NewBlock(values []*Node, kind BlockType, tok lexer.Token) *Node {
	return &Node{Kind: Block, Values: values, BlockKind: kind, Token: tok}
}

// NewParameter builds a formal parameter node.
func NewParameter(modifier lexer.Kind, name string, tok lexer.Token) *Node {
	return &Node{Kind: Parameter, Modifier: modifier, Name: name, Token: tok}
}

// NewCallee builds a function-definition node. params must end with the
// Block body as its last element.
func NewCallee(name *Node, params []*Node, tok lexer.Token) *Node {
	return &Node{Kind: Callee, NameParam: name, Values: params, Token: tok}
}

// Body returns a Callee's trailing Block, or nil if malformed.
func (n *Node) Body() *Node {
	if n.Kind != Callee || len(n.Values) == 0 {
		return nil
	}
	return n.Values[len(n.Values)-1]
}

// FormalParams returns a Callee's parameter nodes, excluding the body.
func (n *Node) FormalParams() []*Node {
	if n.Kind != Callee || len(n.Values) == 0 {
		return nil
	}
	return n.Values[:len(n.Values)-1]
}

// NewCall builds a function/keyword-form invocation node.
func NewCall(name *Node, args []*Node, tok lexer.Token) *Node {
	return &Node{Kind: Call, Left: name, Values: args, Token: tok}
}

// CallName returns a Call's callee expression.
func (n *Node) CallName() *Node { return n.Left }

// NewLoop builds a lowered `for` node.
func NewLoop(call *Node, initial, continuous, statements []*Node, each, iterator *Node, tok lexer.Token) *Node {
	return &Node{
		Kind: Loop, Call: call, Initial: initial, Continuous: continuous,
		Statements: statements, Each: each, Iterator: iterator, Token: tok,
	}
}

// NewGet builds a read-access chain node.
func NewGet(members []*Node, tok lexer.Token) *Node {
	return &Node{Kind: Get, Members: members, Token: tok}
}

// NewSet builds a write-access node. An empty members slice means "write the
// current frame's result value" (the `:=` form).
func NewSet(members []*Node, op lexer.Kind, value *Node, tok lexer.Token) *Node {
	return &Node{Kind: Set, Members: members, Operator: op, Value: value, Token: tok}
}

// NewRemove builds a deletion node.
func NewRemove(members []*Node, tok lexer.Token) *Node {
	return &Node{Kind: Remove, Members: members, Token: tok}
}

// NewReturn builds a return node with an optional value.
func NewReturn(value *Node, tok lexer.Token) *Node {
	return &Node{Kind: Return, Value: value, Token: tok}
}

// NewInjection builds a host-supplied binding node.
func NewInjection(variable string, value *Node, loc *lexer.Location, tok lexer.Token) *Node {
	return &Node{Kind: Injection, Variable: variable, Value: value, HostLoc: loc, Token: tok}
}

// NewValueNode wraps an already-evaluated host value as a literal AST node.
func NewValueNode(host interface{}, loc *lexer.Location, tok lexer.Token) *Node {
	return &Node{Kind: ValueNode, Host: host, HostLoc: loc, Token: tok}
}

// NewCalleeRegistry wraps a function definition (and optional captured
// frame) as a first-class AST value.
func NewCalleeRegistry(def *Node, env interface{}, isReference bool, tok lexer.Token) *Node {
	return &Node{Kind: CalleeRegistry, Def: def, Env: env, IsReference: isReference, Token: tok}
}
