package assets

import (
	"bytes"
	"fmt"
	"text/template"
)

// Data is the dynamic input for a directive template.
type Data struct {
	Cast       Cast
	Pose       string
	Background string
	// Subject is the free-text food name for the food directive.
	Subject string
}

type compiled struct {
	aspect   string
	body     *template.Template
	variants []compiledVariant
}

type compiledVariant struct {
	pose       *template.Template
	background *template.Template
}

// Directives is the parsed, ready-to-render directive set.
type Directives struct {
	cast Cast
	ops  map[string]*compiled
}

func compile(doc document) (*Directives, error) {
	d := &Directives{cast: doc.Cast, ops: make(map[string]*compiled, len(doc.Operations))}
	for name, op := range doc.Operations {
		if op == nil || op.Template == "" {
			return nil, fmt.Errorf("operation %q has no template", name)
		}
		body, err := template.New(name).Option("missingkey=error").Parse(op.Template)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		c := &compiled{aspect: op.Aspect, body: body}
		for i, v := range op.Variants {
			pose, err := template.New(fmt.Sprintf("%s-pose-%d", name, i+1)).Parse(v.Pose)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s variant %d pose: %w", name, i+1, err)
			}
			bg, err := template.New(fmt.Sprintf("%s-background-%d", name, i+1)).Parse(v.Background)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s variant %d background: %w", name, i+1, err)
			}
			c.variants = append(c.variants, compiledVariant{pose: pose, background: bg})
		}
		d.ops[name] = c
	}
	return d, nil
}

// Cast returns the names configured in the document.
func (d *Directives) Cast() Cast {
	return d.cast
}

// Aspect returns the requested output aspect ratio for op, or "" when the
// operation does not constrain it.
func (d *Directives) Aspect(op string) string {
	if c, ok := d.ops[op]; ok {
		return c.aspect
	}
	return ""
}

// Variants returns how many directives Render produces for op.
func (d *Directives) Variants(op string) int {
	c, ok := d.ops[op]
	if !ok {
		return 0
	}
	if len(c.variants) == 0 {
		return 1
	}
	return len(c.variants)
}

// Render returns one rendered directive per variant of op, in document
// order. Operations without variants render a single directive. An empty
// data.Cast falls back to the document's cast.
func (d *Directives) Render(op string, data Data) ([]string, error) {
	c, ok := d.ops[op]
	if !ok {
		return nil, fmt.Errorf("unknown directive %q", op)
	}
	if data.Cast == (Cast{}) {
		data.Cast = d.cast
	}

	if len(c.variants) == 0 {
		out, err := execute(c.body, data)
		if err != nil {
			return nil, err
		}
		return []string{out}, nil
	}

	out := make([]string, 0, len(c.variants))
	for _, v := range c.variants {
		vd := data
		var err error
		if vd.Pose, err = execute(v.pose, data); err != nil {
			return nil, err
		}
		if vd.Background, err = execute(v.background, data); err != nil {
			return nil, err
		}
		text, err := execute(c.body, vd)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

func execute(tmpl *template.Template, data Data) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
