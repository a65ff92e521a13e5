package hardware

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/zmkgen/internal/filesystem"
	"github.com/simonhull/zmkgen/internal/logger"
)

// Catalog is all hardware found in a set of directories.
type Catalog struct {
	Keyboards     []*Hardware
	Controllers   []*Hardware
	Interconnects []*Hardware
	Shields       []*Hardware // every shield, including add-ons without keys

	// Problems holds metadata files that could not be loaded. They are
	// skipped rather than failing discovery.
	Problems []error
}

// Discover loads every *.zmk.yml below dirs. When two files declare the same
// ID, the one from the earlier directory wins, so a config repo's own boards
// can shadow ZMK's. Missing directories are skipped.
func Discover(ctx context.Context, dirs ...string) (*Catalog, error) {
	type found struct {
		path  string
		order int
	}
	var files []found
	for i, dir := range dirs {
		paths, err := filesystem.FindFiles(dir, filesystem.WalkOptions{}, MetadataSuffix)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			files = append(files, found{path: p, order: i})
		}
	}
	logger.Debug("discovered hardware metadata", logger.F("files", len(files)), logger.F("dirs", len(dirs)))

	loaded := make([]*Hardware, len(files))
	problems := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := Load(f.path)
			if err != nil {
				problems[i] = err
				return nil
			}
			loaded[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Catalog{}
	seen := make(map[string]bool)
	for i, h := range loaded {
		if problems[i] != nil {
			logger.Warn("skipping invalid hardware metadata", logger.F("error", problems[i]))
			c.Problems = append(c.Problems, problems[i])
			continue
		}
		if seen[h.ID] {
			logger.Debug("hardware shadowed", logger.F("id", h.ID), logger.F("path", h.Path))
			continue
		}
		seen[h.ID] = true
		c.add(h)
	}
	c.sort()
	return c, nil
}

func (c *Catalog) add(h *Hardware) {
	switch {
	case h.Type == TypeInterconnect:
		c.Interconnects = append(c.Interconnects, h)
	case h.IsKeyboard():
		c.Keyboards = append(c.Keyboards, h)
	case h.IsController():
		c.Controllers = append(c.Controllers, h)
	}
	if h.Type == TypeShield {
		c.Shields = append(c.Shields, h)
	}
}

func (c *Catalog) sort() {
	for _, list := range [][]*Hardware{c.Keyboards, c.Controllers, c.Interconnects, c.Shields} {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
}

func find(list []*Hardware, id string) *Hardware {
	for _, h := range list {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// FindKeyboard returns the keyboard with the given ID, or nil.
func (c *Catalog) FindKeyboard(id string) *Hardware {
	return find(c.Keyboards, id)
}

// FindController returns the controller board with the given ID, or nil.
func (c *Catalog) FindController(id string) *Hardware {
	return find(c.Controllers, id)
}

// FindInterconnect returns the interconnect with the given ID, or nil.
func (c *Catalog) FindInterconnect(id string) *Hardware {
	return find(c.Interconnects, id)
}

// FindShield returns any shield with the given ID, or nil.
func (c *Catalog) FindShield(id string) *Hardware {
	return find(c.Shields, id)
}

// CompatibleKeyboards returns the keyboard shields usable with controller.
func (c *Catalog) CompatibleKeyboards(controller *Hardware) []*Hardware {
	var out []*Hardware
	for _, kb := range c.Keyboards {
		if kb.Type == TypeShield && IsCompatible(controller, kb) {
			out = append(out, kb)
		}
	}
	return out
}

// CompatibleControllers returns the controllers usable with shield.
func (c *Catalog) CompatibleControllers(shield *Hardware) []*Hardware {
	var out []*Hardware
	for _, ctl := range c.Controllers {
		if IsCompatible(ctl, shield) {
			out = append(out, ctl)
		}
	}
	return out
}

// Standalone returns the keyboards with an onboard controller.
func (c *Catalog) Standalone() []*Hardware {
	var out []*Hardware
	for _, kb := range c.Keyboards {
		if kb.Type == TypeBoard {
			out = append(out, kb)
		}
	}
	return out
}
