// Package hardware discovers the boards, shields and interconnects a config
// repo can build for, from the *.zmk.yml metadata files in ZMK and in the
// repo's own boards directory.
package hardware

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/simonhull/zmkgen/internal/build"
	"github.com/simonhull/zmkgen/internal/schema"
	"github.com/simonhull/zmkgen/internal/yamlnode"
)

// MetadataSuffix is the file name suffix of hardware metadata files.
const MetadataSuffix = ".zmk.yml"

// Type is the kind of a piece of hardware.
type Type string

const (
	TypeBoard        Type = "board"
	TypeShield       Type = "shield"
	TypeInterconnect Type = "interconnect"
)

// FeatureKeys marks hardware that has a key matrix, i.e. is a keyboard.
const FeatureKeys = "keys"

// Metadata is the content of a *.zmk.yml file.
type Metadata struct {
	FileFormat   string   `yaml:"file_format"`
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Type         Type     `yaml:"type"`
	URL          string   `yaml:"url,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	Manufacturer string   `yaml:"manufacturer,omitempty"`
	Arch         string   `yaml:"arch,omitempty"`
	Outputs      []string `yaml:"outputs,omitempty"`
	Requires     []string `yaml:"requires,omitempty"`
	Exposes      []string `yaml:"exposes,omitempty"`
	Siblings     []string `yaml:"siblings,omitempty"`
	Features     []string `yaml:"features,omitempty"`
}

// Hardware is a board, shield or interconnect and where it was defined.
type Hardware struct {
	Metadata
	Path string // metadata file
}

// Board, Shield and Interconnect name the roles a Hardware plays.
type (
	Board        = Hardware
	Shield       = Hardware
	Interconnect = Hardware
)

func (h *Hardware) String() string {
	return h.ID
}

// Directory returns the directory holding the metadata file, which also
// holds the keymap and config.
func (h *Hardware) Directory() string {
	return filepath.Dir(h.Path)
}

// KeymapPath returns the default keymap, which may not exist.
func (h *Hardware) KeymapPath() string {
	return filepath.Join(h.Directory(), h.ID+".keymap")
}

// ConfigPath returns the default Kconfig fragment, which may not exist.
func (h *Hardware) ConfigPath() string {
	return filepath.Join(h.Directory(), h.ID+".conf")
}

// HasFeature reports whether the metadata lists feature.
func (h *Hardware) HasFeature(feature string) bool {
	return slices.Contains(h.Features, feature)
}

// IsKeyboard reports whether the hardware has keys.
func (h *Hardware) IsKeyboard() bool {
	return h.Type != TypeInterconnect && h.HasFeature(FeatureKeys)
}

// IsController reports whether the hardware is a board without keys, such
// as a nice!nano.
func (h *Hardware) IsController() bool {
	return h.Type == TypeBoard && !h.HasFeature(FeatureKeys)
}

// IsCompatible reports whether shield can be used with base: every
// interconnect the shield requires must be exposed by base.
func IsCompatible(base, shield *Hardware) bool {
	for _, r := range shield.Requires {
		if !slices.Contains(base.Exposes, r) {
			return false
		}
	}
	return true
}

// BuildItems returns the build matrix entries for a keyboard. A shield is
// built once per sibling (e.g. left and right halves) on controller; a
// board with onboard controller is built once per sibling on its own.
func BuildItems(keyboard, controller *Hardware) ([]build.Item, error) {
	switch keyboard.Type {
	case TypeShield:
		if controller == nil {
			return nil, fmt.Errorf("keyboard %q is a shield and needs a controller board", keyboard.ID)
		}
		shields := keyboard.Siblings
		if len(shields) == 0 {
			shields = []string{keyboard.ID}
		}
		items := make([]build.Item, 0, len(shields))
		for _, s := range shields {
			items = append(items, build.Item{Board: controller.ID, Shield: s})
		}
		return items, nil

	case TypeBoard:
		if controller != nil {
			return nil, fmt.Errorf("keyboard %q has an onboard controller and does not require a controller board", keyboard.ID)
		}
		boards := keyboard.Siblings
		if len(boards) == 0 {
			boards = []string{keyboard.ID}
		}
		items := make([]build.Item, 0, len(boards))
		for _, b := range boards {
			items = append(items, build.Item{Board: b})
		}
		return items, nil

	default:
		return nil, fmt.Errorf("%q is a %s, not a keyboard", keyboard.ID, keyboard.Type)
	}
}

// Load reads and validates one metadata file.
func Load(path string) (*Hardware, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hardware metadata: %w", err)
	}
	doc, err := yamlnode.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := schema.Validate(schema.HardwareMetadata, doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	h := &Hardware{Path: path}
	if err := doc.Decode(&h.Metadata); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}
