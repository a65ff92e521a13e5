// Package repo locates and edits a ZMK user config repository.
//
// A config repo is any directory containing config/west.yml. Its layout:
//
//	build.yaml          build matrix (see package build)
//	boards/             custom boards and shields
//	config/west.yml     west manifest listing ZMK and modules
//	config/*.keymap     keymaps and .conf files
//	zmk/                ZMK checkout created by "west update"
//
// Example:
//
//	r, err := repo.Find(".")
//	if err != nil {
//		return err
//	}
//	m, err := r.Manifest()
package repo
