// Package keyboard generates the files of a new keyboard shield in a config
// repo from the shield templates.
package keyboard

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/simonhull/zmkgen/internal/generator"
	"github.com/simonhull/zmkgen/internal/tmpl"
)

// Layout selects the shield template variant.
type Layout string

const (
	Unibody Layout = "unibody"
	Split   Layout = "split"
)

// Layouts lists the supported layouts in menu order.
var Layouts = []Layout{Unibody, Split}

// ParseLayout converts a layout name to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case Unibody, Split:
		return l, nil
	default:
		return "", fmt.Errorf("unknown layout %q (want unibody or split)", s)
	}
}

// DefaultInterconnect is used when Options leaves Interconnect empty.
const DefaultInterconnect = "pro_micro"

const (
	MaxRows    = 16
	MaxColumns = 32
)

var idRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Options describes a new keyboard.
type Options struct {
	ID           string
	Name         string
	Layout       Layout
	Rows         int
	Columns      int // total over both halves of a split keyboard
	Interconnect string
}

// Validate checks the options and fills in defaults.
func (o *Options) Validate() error {
	if !idRe.MatchString(o.ID) {
		return fmt.Errorf("invalid keyboard ID %q: use lower case letters, digits and underscores, starting with a letter", o.ID)
	}
	if strings.HasSuffix(o.ID, "_left") || strings.HasSuffix(o.ID, "_right") {
		return fmt.Errorf("keyboard ID %q must not end in _left or _right", o.ID)
	}
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("keyboard name is required")
	}
	if o.Layout == "" {
		o.Layout = Unibody
	}
	if _, err := ParseLayout(string(o.Layout)); err != nil {
		return err
	}
	if o.Rows < 1 || o.Rows > MaxRows {
		return fmt.Errorf("rows must be between 1 and %d, got %d", MaxRows, o.Rows)
	}
	if o.Columns < 1 || o.Columns > MaxColumns {
		return fmt.Errorf("columns must be between 1 and %d, got %d", MaxColumns, o.Columns)
	}
	if o.Layout == Split && o.Columns%2 != 0 {
		return fmt.Errorf("a split keyboard needs an even number of columns, got %d", o.Columns)
	}
	if o.Interconnect == "" {
		o.Interconnect = DefaultInterconnect
	}
	if !idRe.MatchString(o.Interconnect) {
		return fmt.Errorf("invalid interconnect %q", o.Interconnect)
	}
	return nil
}

// halfColumns is the column count of one half, or of the whole keyboard if
// it is not split.
func (o Options) halfColumns() int {
	if o.Layout == Split {
		return o.Columns / 2
	}
	return o.Columns
}

// Vars returns the template context for the keyboard.
func (o Options) Vars() tmpl.Context {
	colIndent := 12
	if o.Layout == Split {
		colIndent = 8
	}
	half := o.halfColumns()

	return tmpl.Context{
		"id":           o.ID,
		"name":         o.Name,
		"interconnect": o.Interconnect,
		"rows":         strconv.Itoa(o.Rows),
		"columns":      strconv.Itoa(o.Columns),
		"half_columns": strconv.Itoa(half),
		"map":          grid(o.Rows, o.Columns, 12, func(r, c int) string { return fmt.Sprintf("RC(%d,%d)", r, c) }),
		"bindings":     grid(o.Rows, o.Columns, 16, func(int, int) string { return "&none" }),
		"row_gpios":    gpios(o.Interconnect, 0, o.Rows, 12, "(GPIO_ACTIVE_HIGH | GPIO_PULL_DOWN)"),
		"col_gpios":    gpios(o.Interconnect, o.Rows, half, colIndent, "GPIO_ACTIVE_HIGH"),
	}
}

func grid(rows, cols, indent int, cell func(r, c int) string) string {
	lines := make([]string, rows)
	for r := range rows {
		cells := make([]string, cols)
		for c := range cols {
			cells[c] = cell(r, c)
		}
		lines[r] = strings.Repeat(" ", indent) + strings.Join(cells, " ")
	}
	return strings.Join(lines, "\n")
}

// pinLabels maps interconnects to the devicetree label of their GPIO nexus.
var pinLabels = map[string]string{
	"pro_micro":  "pro_micro",
	"seeed_xiao": "xiao_d",
}

func gpios(interconnect string, first, count, indent int, flags string) string {
	label, ok := pinLabels[interconnect]
	if !ok {
		label = interconnect
	}
	lines := make([]string, count)
	for i := range count {
		sep := ","
		if i == 0 {
			sep = "="
		}
		lines[i] = fmt.Sprintf("%s%s <&%s %d %s>", strings.Repeat(" ", indent), sep, label, first+i, flags)
	}
	return strings.Join(lines, "\n")
}

// Files returns the files generated for layout, with paths relative to the
// config repo root.
func Files(layout Layout) []generator.File {
	const dir = "boards/shields/${id}/"
	prefix := "shield/" + string(layout) + "/"

	files := []generator.File{
		{Template: prefix + "Kconfig.shield", Path: dir + "Kconfig.shield"},
		{Template: prefix + "Kconfig.defconfig", Path: dir + "Kconfig.defconfig"},
	}
	if layout == Split {
		files = append(files,
			generator.File{Template: prefix + "dtsi", Path: dir + "${id}.dtsi"},
			generator.File{Template: prefix + "left.overlay", Path: dir + "${id}_left.overlay"},
			generator.File{Template: prefix + "right.overlay", Path: dir + "${id}_right.overlay"},
		)
	} else {
		files = append(files, generator.File{Template: prefix + "overlay", Path: dir + "${id}.overlay"})
	}
	return append(files,
		generator.File{Template: prefix + "keymap", Path: dir + "${id}.keymap"},
		generator.File{Template: prefix + "conf", Path: dir + "${id}.conf"},
		generator.File{Template: prefix + "zmk.yml", Path: dir + "${id}.zmk.yml"},
	)
}

// Generate writes the files of a new keyboard under root, the config repo
// root.
func Generate(ctx context.Context, gen *generator.Generator, root string, o Options, policy generator.Policy, opts generator.ExecuteOptions) ([]generator.Result, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return gen.Generate(ctx, root, Files(o.Layout), o.Vars(), policy, opts)
}
