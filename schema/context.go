package schema

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// MarkerKey prefixes members written by the canonical printer. Paths containing it are skipped
// on parse instead of being captured as unparseable.
const MarkerKey = "!!CV"

// ParseContext tracks the JSON path being parsed and collects the non-fatal diagnostics
// raised along the way. A ParseContext belongs to a single parse and is not safe for
// concurrent use.
type ParseContext struct {
	path        []pathElem
	diagnostics []error
	captures    []func(path string, raw json.RawMessage)
}

// pathElem is an object member name, or an array index when isIndex is set.
type pathElem struct {
	name    string
	index   int
	isIndex bool
}

// NewParseContext returns an empty context rooted at the document.
func NewParseContext() *ParseContext {
	return &ParseContext{}
}

// Path renders the current location, e.g. "imp[0].banner.w".
func (ctx *ParseContext) Path() string {
	var b strings.Builder
	for i, elem := range ctx.path {
		if elem.isIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(elem.index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(elem.name)
	}
	return b.String()
}

// Warn records a non-fatal diagnostic.
func (ctx *ParseContext) Warn(err error) {
	if glog.V(2) {
		glog.Infof("%v", err)
	}
	ctx.diagnostics = append(ctx.diagnostics, err)
}

// Diagnostics returns the warnings recorded so far.
func (ctx *ParseContext) Diagnostics() []error {
	return ctx.diagnostics
}

func (ctx *ParseContext) pushField(name string) {
	ctx.path = append(ctx.path, pathElem{name: name})
}

func (ctx *ParseContext) pushIndex(i int) {
	ctx.path = append(ctx.path, pathElem{index: i, isIndex: true})
}

func (ctx *ParseContext) pop() {
	ctx.path = ctx.path[:len(ctx.path)-1]
}

func (ctx *ParseContext) pushCapture(capture func(path string, raw json.RawMessage)) {
	ctx.captures = append(ctx.captures, capture)
}

func (ctx *ParseContext) popCapture() {
	ctx.captures = ctx.captures[:len(ctx.captures)-1]
}

// capture hands an unknown member to the innermost structure collecting them. It reports
// false when no enclosing structure captures unknown data.
func (ctx *ParseContext) capture(raw json.RawMessage) bool {
	if len(ctx.captures) == 0 {
		return false
	}
	ctx.captures[len(ctx.captures)-1](ctx.Path(), raw)
	return true
}
