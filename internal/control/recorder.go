package control

import (
	"parlay/internal/errors"
	"parlay/internal/relation"
	"parlay/internal/types"
)

// openBlock is one entry of the Recorder's blocks stack: an If or While
// wrapper that has been pushed by IF/WHILE but not yet closed by END
// (§4.6).
type openBlock struct {
	isWhile bool
	ifNode  *If
	while   *While
	// thenClosed is set by ELSE once it has installed the current scope
	// as the If's Then block; a second ELSE, or an ELSE under a While,
	// is a malformed program.
	thenClosed bool
}

// Recorder holds the two ambient stacks §4.6 describes: scopes (open
// statement lists) and blocks (open If/While wrappers). Top-level
// declarations (NEW_RELATION etc.) accumulate separately in Decls since
// they are never nested inside a block's Then/Else/Body.
type Recorder struct {
	file   string
	scopes [][]Stmt
	blocks []*openBlock
	Decls  []Decl
	Errors []error
}

func NewRecorder(file string) *Recorder {
	return &Recorder{file: file, scopes: [][]Stmt{nil}}
}

func (r *Recorder) pushScope() { r.scopes = append(r.scopes, nil) }
func (r *Recorder) popScope() []Stmt {
	s := r.scopes[len(r.scopes)-1]
	r.scopes = r.scopes[:len(r.scopes)-1]
	return s
}
func (r *Recorder) appendTop(st Stmt) {
	r.scopes[len(r.scopes)-1] = append(r.scopes[len(r.scopes)-1], st)
}

// Statements returns the root scope's recorded statements once the
// control program has finished recording (blocks must be empty).
func (r *Recorder) Statements() []Stmt {
	if len(r.scopes) != 1 {
		return nil
	}
	return r.scopes[0]
}

// ---- NEW_* declarations ----

func (r *Recorder) NewRelation(name string, size uint64) *relation.Relation {
	rel := relation.NewRelation(size, name)
	r.Decls = append(r.Decls, &NewRelationDecl{Name: name, Size: size, Rel: rel})
	return rel
}

func (r *Recorder) NewField(rel *relation.Relation, name string, t types.Type) (*relation.Field, error) {
	f, err := rel.NewField(name, t)
	if err != nil {
		return nil, err
	}
	r.Decls = append(r.Decls, &NewFieldDecl{Rel: rel, Name: name, Type: t, Field: f})
	return f, nil
}

func (r *Recorder) NewGlobal(name string, t types.Type, init interface{}) *relation.Global {
	g := relation.NewGlobal(name, t, init)
	r.Decls = append(r.Decls, &NewGlobalDecl{Name: name, Type: t, Init: init, Global: g})
	return g
}

func (r *Recorder) NewFunction(name string, fn interface{}) {
	r.Decls = append(r.Decls, &NewFunctionDecl{Name: name, Fn: fn})
}

func (r *Recorder) NewSubsetFromRects(rel *relation.Relation, name string, rects []relation.Rectangle) *relation.Subset {
	s := rel.NewSubsetFromMask(name, rectPredicate(rel, rects))
	s.SetRectangles(rects)
	r.Decls = append(r.Decls, &NewSubsetDecl{Rel: rel, Name: name, Rects: rects, Subset: s})
	return s
}

func (r *Recorder) NewSubsetFromPredicate(rel *relation.Relation, name string, pred func(uint64) bool) *relation.Subset {
	s := rel.NewSubsetFromMask(name, pred)
	r.Decls = append(r.Decls, &NewSubsetDecl{Rel: rel, Name: name, Predicate: pred, Subset: s})
	return s
}

func rectPredicate(rel *relation.Relation, rects []relation.Rectangle) func(uint64) bool {
	return func(key uint64) bool {
		coord := rel.Coord(key)
		for _, rc := range rects {
			inside := len(rc.Lo) == len(coord) && len(rc.Hi) == len(coord)
			for i := 0; inside && i < len(coord); i++ {
				inside = coord[i] >= rc.Lo[i] && coord[i] <= rc.Hi[i]
			}
			if inside {
				return true
			}
		}
		return false
	}
}

// ---- simple statements ----

func (r *Recorder) LoadField(f *relation.Field, v interface{}) {
	r.appendTop(&LoadField{Field: f, Const: v})
}

func (r *Recorder) SetGlobal(g *relation.Global, v Expr) {
	r.appendTop(&SetGlobal{Global: g, Value: v})
}

func (r *Recorder) ForEach(fn interface{}, rel *relation.Relation, subset *relation.Subset, reducedInto *relation.Global) {
	r.appendTop(&ForEach{Fn: fn, Rel: rel, Subset: subset, ReducedInto: reducedInto})
}

// ---- IF/ELSE/END, WHILE/END ----

func (r *Recorder) If(cond Cond) {
	r.blocks = append(r.blocks, &openBlock{ifNode: &If{Cond: cond}})
	r.pushScope()
}

func (r *Recorder) While(cond Cond) {
	r.blocks = append(r.blocks, &openBlock{isWhile: true, while: &While{Cond: cond}})
	r.pushScope()
}

// Else closes the current scope as the top If's Then block and opens a
// fresh scope for the Else block (§4.6).
func (r *Recorder) Else() {
	if len(r.blocks) == 0 {
		r.fatal("ELSE with no matching IF")
		return
	}
	top := r.blocks[len(r.blocks)-1]
	if top.isWhile || top.thenClosed {
		r.fatal("ELSE does not match an open IF")
		return
	}
	top.ifNode.Then = r.popScope()
	top.thenClosed = true
	r.pushScope()
}

// End pops the top block wrapper, installs the current scope as its
// Then (if ELSE never ran), Else, or While body, and appends the closed
// wrapper to the scope now exposed below it. Unbalanced END is a fatal
// MalformedProgram (§4.6).
func (r *Recorder) End() {
	if len(r.blocks) == 0 {
		r.fatal("END with no matching IF/WHILE")
		return
	}
	top := r.blocks[len(r.blocks)-1]
	r.blocks = r.blocks[:len(r.blocks)-1]
	body := r.popScope()
	if top.isWhile {
		top.while.Body = body
		r.appendTop(top.while)
		return
	}
	if top.thenClosed {
		top.ifNode.Else = body
	} else {
		top.ifNode.Then = body
	}
	r.appendTop(top.ifNode)
}

func (r *Recorder) fatal(msg string) {
	r.Errors = append(r.Errors, errors.New(errors.MalformedProgram, errors.Pos{File: r.file}, "%s", msg))
}
