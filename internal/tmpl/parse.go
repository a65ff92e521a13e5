package tmpl

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	identRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	blockNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)
	attrRe      = regexp.MustCompile(`([A-Za-z_]+)\s*=\s*"([^"]*)"`)
	attrListRe  = regexp.MustCompile(`^(\s*[A-Za-z_]+\s*=\s*"[^"]*")*\s*$`)
)

type frame struct {
	name  string
	line  int
	nodes []Node
}

type parser struct {
	name     string
	src      string
	pos      int
	line     int
	text     strings.Builder
	textLine int
	stack    []*frame
	blocks   map[string]int
	tmpl     *Template
}

// Parse parses template text. The name is used for error messages and as the
// Source of every node.
func Parse(name, src string) (*Template, error) {
	p := &parser{
		name:   name,
		src:    src,
		line:   1,
		stack:  []*frame{{}},
		blocks: make(map[string]int),
		tmpl:   &Template{Name: name, Defaults: make(map[string]string)},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.tmpl, nil
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		rest := p.src[p.pos:]
		next := strings.IndexAny(rest, "$<")
		if next < 0 {
			p.writeText(rest)
			p.pos = len(p.src)
			break
		}
		if next > 0 {
			p.writeText(rest[:next])
			p.pos += next
			rest = rest[next:]
		}

		var err error
		switch {
		case strings.HasPrefix(rest, "$${"):
			p.writeText("${")
			p.pos += 3
		case strings.HasPrefix(rest, "${"):
			err = p.parseVar()
		case strings.HasPrefix(rest, "</%"):
			err = p.parseClose()
		case strings.HasPrefix(rest, "<%"):
			err = p.parseTag()
		default:
			p.writeText(rest[:1])
			p.pos++
		}
		if err != nil {
			return err
		}
	}

	p.flushText()
	if len(p.stack) > 1 {
		open := p.stack[len(p.stack)-1]
		return p.errorf(open.line, "block %q is never closed", open.name)
	}
	p.tmpl.Nodes = p.stack[0].nodes
	return nil
}

func (p *parser) writeText(s string) {
	if p.text.Len() == 0 {
		p.textLine = p.line
	}
	p.text.WriteString(s)
	p.line += strings.Count(s, "\n")
}

func (p *parser) flushText() {
	if p.text.Len() == 0 {
		return
	}
	p.appendNode(Node{Kind: TextNode, Text: p.text.String(), Source: p.name, Line: p.textLine})
	p.text.Reset()
}

func (p *parser) appendNode(n Node) {
	top := p.stack[len(p.stack)-1]
	top.nodes = append(top.nodes, n)
}

func (p *parser) errorf(line int, format string, args ...any) error {
	return &TemplateSyntaxError{Template: p.name, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseVar() error {
	start := p.pos + 2
	end := strings.IndexAny(p.src[start:], "}\n")
	if end < 0 || p.src[start+end] != '}' {
		return p.errorf(p.line, "unterminated placeholder")
	}
	inner := p.src[start : start+end]

	parts := strings.Split(inner, "|")
	name := strings.TrimSpace(parts[0])
	if !identRe.MatchString(name) {
		return p.errorf(p.line, "invalid placeholder name %q", name)
	}

	var filters []string
	for _, f := range parts[1:] {
		f = strings.TrimSpace(f)
		if _, ok := filterFuncs[f]; !ok {
			return p.errorf(p.line, "unknown filter %q for placeholder %q", f, name)
		}
		filters = append(filters, f)
	}

	p.flushText()
	p.appendNode(Node{Kind: VarNode, Name: name, Filters: filters, Source: p.name, Line: p.line})
	p.pos = start + end + 1
	return nil
}

// tagEnd returns the index just past the '>' closing the tag at p.pos. A '>'
// inside a quoted attribute value does not close the tag.
func (p *parser) tagEnd() (int, error) {
	quoted := false
	for i := p.pos; i < len(p.src); i++ {
		switch p.src[i] {
		case '"':
			quoted = !quoted
		case '>':
			if !quoted {
				return i + 1, nil
			}
		}
	}
	return 0, p.errorf(p.line, "unterminated tag")
}

// consumeTag moves past a tag ending at end. A tag alone on its line takes the
// whole line with it.
func (p *parser) consumeTag(end int) {
	p.line += strings.Count(p.src[p.pos:end], "\n")
	lineStart := strings.LastIndexByte(p.src[:p.pos], '\n') + 1
	if strings.Trim(p.src[lineStart:p.pos], " \t") != "" {
		p.pos = end
		return
	}

	after := end
	for after < len(p.src) && (p.src[after] == ' ' || p.src[after] == '\t' || p.src[after] == '\r') {
		after++
	}
	if after < len(p.src) && p.src[after] != '\n' {
		p.pos = end
		return
	}

	trimmed := strings.TrimRight(p.text.String(), " \t")
	p.text.Reset()
	p.text.WriteString(trimmed)

	if after < len(p.src) {
		after++
		p.line++
	}
	p.pos = after
}

func (p *parser) parseTag() error {
	end, err := p.tagEnd()
	if err != nil {
		return err
	}
	line := p.line
	body := strings.TrimSpace(p.src[p.pos+2 : end-1])
	selfClosing := strings.HasSuffix(body, "/")
	body = strings.TrimSpace(strings.TrimSuffix(body, "/"))

	keyword, rawAttrs := body, ""
	if i := strings.IndexAny(body, " \t\r\n"); i >= 0 {
		keyword, rawAttrs = body[:i], body[i:]
	}
	if !attrListRe.MatchString(rawAttrs) {
		return p.errorf(line, "malformed attributes in <%%%s>", keyword)
	}
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(rawAttrs, -1) {
		attrs[m[1]] = m[2]
	}

	switch keyword {
	case "inherit":
		if !selfClosing {
			return p.errorf(line, "<%%inherit> must be self-closing")
		}
		if len(p.stack) > 1 {
			return p.errorf(line, "<%%inherit> is not allowed inside a block")
		}
		if p.tmpl.Inherits != "" {
			return p.errorf(line, "template inherits more than once")
		}
		file := strings.TrimSpace(attrs["file"])
		if file == "" {
			return p.errorf(line, "<%%inherit> requires a file attribute")
		}
		p.consumeTag(end)
		p.tmpl.Inherits = file

	case "set":
		if !selfClosing {
			return p.errorf(line, "<%%set> must be self-closing")
		}
		if len(p.stack) > 1 {
			return p.errorf(line, "<%%set> is not allowed inside a block")
		}
		name, ok := attrs["var"]
		if !ok || !identRe.MatchString(name) {
			return p.errorf(line, "<%%set> requires a valid var attribute")
		}
		value, ok := attrs["value"]
		if !ok {
			return p.errorf(line, "<%%set var=%q> requires a value attribute", name)
		}
		if _, dup := p.tmpl.Defaults[name]; dup {
			return p.errorf(line, "variable %q is set more than once", name)
		}
		p.consumeTag(end)
		p.tmpl.Defaults[name] = value

	case "block":
		name := attrs["name"]
		if !blockNameRe.MatchString(name) {
			return p.errorf(line, "<%%block> requires a valid name attribute, got %q", name)
		}
		if prev, dup := p.blocks[name]; dup {
			return p.errorf(line, "block %q already declared on line %d", name, prev)
		}
		p.blocks[name] = line
		p.consumeTag(end)
		p.flushText()
		if selfClosing {
			p.appendNode(Node{Kind: BlockNode, Name: name, Source: p.name, Line: line})
			return nil
		}
		p.stack = append(p.stack, &frame{name: name, line: line})

	default:
		return p.errorf(line, "unknown tag <%%%s>", keyword)
	}
	return nil
}

func (p *parser) parseClose() error {
	end, err := p.tagEnd()
	if err != nil {
		return err
	}
	line := p.line
	keyword := strings.TrimSpace(p.src[p.pos+3 : end-1])
	if keyword != "block" {
		return p.errorf(line, "unknown closing tag </%%%s>", keyword)
	}
	if len(p.stack) == 1 {
		return p.errorf(line, "</%%block> without an open block")
	}

	p.consumeTag(end)
	p.flushText()

	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	p.appendNode(Node{Kind: BlockNode, Name: top.name, Body: top.nodes, Source: p.name, Line: top.line})
	return nil
}
