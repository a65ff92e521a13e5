package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/zmkgen/internal/build"
	"github.com/simonhull/zmkgen/internal/generator"
	"github.com/simonhull/zmkgen/internal/hardware"
)

func matrixItems(t *testing.T, root string) []build.Item {
	t.Helper()
	m, err := build.Load(filepath.Join(root, "build.yaml"))
	require.NoError(t, err)
	items, err := m.Include()
	require.NoError(t, err)
	return items
}

func requireFatal(t *testing.T, err error, contains string) {
	t.Helper()
	var fatal *FatalError
	require.True(t, errors.As(err, &fatal), "want FatalError, got %v", err)
	assert.Contains(t, fatal.Message, contains)
}

func TestKeyboardAdd_Flags(t *testing.T) {
	app, _ := newTestApp(t)
	root := newTestRepo(t, app)

	out, err := run(t, app, "keyboard", "add", "-k", "corne", "-c", "nice_nano_v2")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "corne, nice_nano_v2".`)
	assert.Contains(t, out, `Run "zmkgen code corne" to edit the keymap.`)

	assert.Equal(t, []build.Item{
		{Board: "nice_nano_v2", Shield: "corne_left"},
		{Board: "nice_nano_v2", Shield: "corne_right"},
	}, matrixItems(t, root))

	keymap, err := os.ReadFile(filepath.Join(root, "config", "corne.keymap"))
	require.NoError(t, err)
	assert.Equal(t, "/* corne keymap */\n", string(keymap))
	assert.FileExists(t, filepath.Join(root, "config", "corne.conf"))
}

func TestKeyboardAdd_KeepsExistingKeymap(t *testing.T) {
	app, _ := newTestApp(t)
	root := newTestRepo(t, app)
	writeFile(t, filepath.Join(root, "config", "corne.keymap"), "/* mine */\n")

	_, err := run(t, app, "keyboard", "add", "-k", "corne", "-c", "nice_nano_v2")
	require.NoError(t, err)

	keymap, err := os.ReadFile(filepath.Join(root, "config", "corne.keymap"))
	require.NoError(t, err)
	assert.Equal(t, "/* mine */\n", string(keymap))
}

func TestKeyboardAdd_Menus(t *testing.T) {
	app, prompter := newTestApp(t)
	root := newTestRepo(t, app)
	prompter.picks = []int{0, 0}

	_, err := run(t, app, "keyboard", "add")
	require.NoError(t, err)

	assert.Equal(t, []string{"Select a keyboard:", "Select a controller:"}, prompter.titles)
	require.Len(t, prompter.items, 2)
	assert.Len(t, prompter.items[0], 2, "corne and planck_rev6")
	assert.Len(t, prompter.items[1], 1, "only nice_nano_v2 exposes pro_micro")
	assert.Contains(t, prompter.items[1][0], "nice_nano_v2")

	assert.Len(t, matrixItems(t, root), 2)
}

func TestKeyboardAdd_Standalone(t *testing.T) {
	app, prompter := newTestApp(t)
	root := newTestRepo(t, app)

	out, err := run(t, app, "keyboard", "add", "-k", "planck_rev6")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "planck_rev6".`)
	assert.Empty(t, prompter.titles, "a board keyboard needs no controller")
	assert.Equal(t, []build.Item{{Board: "planck_rev6"}}, matrixItems(t, root))
}

func TestKeyboardAdd_AlreadyAdded(t *testing.T) {
	app, _ := newTestApp(t)
	root := newTestRepo(t, app)

	_, err := run(t, app, "keyboard", "add", "-k", "corne", "-c", "nice_nano_v2")
	require.NoError(t, err)
	out, err := run(t, app, "keyboard", "add", "-k", "corne", "-c", "nice_nano_v2")
	require.NoError(t, err)

	assert.Contains(t, out, `"corne, nice_nano_v2" is already in the build matrix.`)
	assert.Len(t, matrixItems(t, root), 2)
}

func TestKeyboardAdd_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{"unknown keyboard", []string{"-k", "nope"}, `Could not find a keyboard with ID "nope"`},
		{"unknown controller", []string{"-k", "corne", "-c", "nope"}, `Could not find a controller board with ID "nope"`},
		{"onboard controller", []string{"-k", "planck_rev6", "-c", "nice_nano_v2"}, "has an onboard controller"},
		{"incompatible", []string{"-k", "corne", "-c", "seeeduino_xiao_ble"}, "is not compatible with controller"},
		{"no compatible keyboards", []string{"-c", "seeeduino_xiao_ble"}, "No matching keyboards found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			root := newTestRepo(t, app)

			_, err := run(t, app, append([]string{"keyboard", "add"}, tt.args...)...)
			requireFatal(t, err, tt.contains)
			assert.Empty(t, matrixItems(t, root))
		})
	}
}

func TestKeyboardRemove(t *testing.T) {
	app, _ := newTestApp(t)
	root := newTestRepo(t, app)

	_, err := run(t, app, "keyboard", "remove", "-k", "corne")
	requireFatal(t, err, "The build matrix is empty.")

	_, err = run(t, app, "keyboard", "add", "-k", "corne", "-c", "nice_nano_v2")
	require.NoError(t, err)
	_, err = run(t, app, "keyboard", "add", "-k", "planck_rev6")
	require.NoError(t, err)

	_, err = run(t, app, "keyboard", "remove", "-k", "lily58")
	requireFatal(t, err, `"lily58" is not in the build matrix.`)

	out, err := run(t, app, "keyboard", "remove", "-k", "corne")
	require.NoError(t, err)
	assert.Contains(t, out, `Removed "corne" from the build matrix.`)
	assert.Equal(t, []build.Item{{Board: "planck_rev6"}}, matrixItems(t, root))
}

func TestKeyboardRemove_Menu(t *testing.T) {
	app, prompter := newTestApp(t)
	root := newTestRepo(t, app)

	_, err := run(t, app, "keyboard", "add", "-k", "corne", "-c", "nice_nano_v2")
	require.NoError(t, err)

	prompter.picks = []int{1}
	out, err := run(t, app, "keyboard", "remove")
	require.NoError(t, err)

	assert.Equal(t, []string{"corne_left, nice_nano_v2", "corne_right, nice_nano_v2"}, prompter.items[0])
	assert.Contains(t, out, `Removed "corne_right, nice_nano_v2" from the build matrix.`)
	assert.Equal(t, []build.Item{{Board: "nice_nano_v2", Shield: "corne_left"}}, matrixItems(t, root))
}

func TestKeyboardList(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		contains   []string
		notContain []string
	}{
		{
			name:     "everything",
			contains: []string{"Keyboards:", "corne", "planck_rev6", "Controllers:", "nice_nano_v2", "seeeduino_xiao_ble", "Interconnects:", "pro_micro"},
		},
		{
			name:       "only controllers",
			args:       []string{"-t", "controller"},
			contains:   []string{"nice_nano_v2", "seeeduino_xiao_ble"},
			notContain: []string{"Controllers:", "corne"},
		},
		{
			name:       "keyboards for a board",
			args:       []string{"-b", "nice_nano_v2"},
			contains:   []string{"corne"},
			notContain: []string{"planck_rev6", "Keyboards:"},
		},
		{
			name:       "controllers for a shield",
			args:       []string{"-s", "corne"},
			contains:   []string{"nice_nano_v2"},
			notContain: []string{"seeeduino_xiao_ble"},
		},
		{
			name:       "controllers for an add-on shield",
			args:       []string{"-s", "nice_view_adapter"},
			contains:   []string{"nice_nano_v2"},
			notContain: []string{"seeeduino_xiao_ble"},
		},
		{
			name:       "standalone keyboards",
			args:       []string{"--standalone"},
			contains:   []string{"planck_rev6"},
			notContain: []string{"corne"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			newTestRepo(t, app)

			out, err := run(t, app, append([]string{"keyboard", "list"}, tt.args...)...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContain {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestKeyboardList_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{"unknown type", []string{"-t", "mouse"}, `Unknown type "mouse"`},
		{"unknown board", []string{"-b", "nope"}, `Could not find controller board "nope"`},
		{"unknown shield", []string{"-s", "nope"}, `Could not find shield "nope"`},
		{"board keyboard as shield", []string{"-s", "planck_rev6"}, "is a standalone keyboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			newTestRepo(t, app)

			_, err := run(t, app, append([]string{"keyboard", "list"}, tt.args...)...)
			requireFatal(t, err, tt.contains)
		})
	}
}

func TestKeyboardList_Build(t *testing.T) {
	app, _ := newTestApp(t)
	newTestRepo(t, app)

	out, err := run(t, app, "kb", "list", "--build")
	require.NoError(t, err)
	assert.Contains(t, out, "The build matrix is empty.")

	_, err = run(t, app, "kb", "add", "-k", "corne", "-c", "nice_nano_v2")
	require.NoError(t, err)

	out, err = run(t, app, "kb", "list", "--build")
	require.NoError(t, err)
	assert.Contains(t, out, "Board")
	assert.Contains(t, out, "corne_left")
	assert.Contains(t, out, "corne_right")
}

func TestKeyboardList_WithoutZMK(t *testing.T) {
	app, _ := newTestApp(t)
	root := newTestRepo(t, app)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "zmk")))

	out, err := run(t, app, "keyboard", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "zmkgen update")
	assert.NotContains(t, out, "corne")
}

func TestKeyboardNew_Flags(t *testing.T) {
	app, _ := newTestApp(t)
	root := newTestRepo(t, app)

	out, err := run(t, app, "keyboard", "new", "--id", "macropad", "--name", "Macro Pad", "--layout", "unibody", "--rows", "2", "--columns", "3")
	require.NoError(t, err)
	assert.Contains(t, out, `Created keyboard "Macro Pad" in boards/shields/macropad`)
	assert.Contains(t, out, "zmkgen keyboard add -k macropad")

	dir := filepath.Join(root, "boards", "shields", "macropad")
	for _, f := range []string{"Kconfig.shield", "Kconfig.defconfig", "macropad.overlay", "macropad.keymap", "macropad.conf", "macropad.zmk.yml"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}

	h, err := hardware.Load(filepath.Join(dir, "macropad.zmk.yml"))
	require.NoError(t, err)
	assert.Equal(t, "Macro Pad", h.Name)

	// The new shield is usable right away.
	_, err = run(t, app, "keyboard", "add", "-k", "macropad", "-c", "nice_nano_v2")
	require.NoError(t, err)
	assert.Contains(t, matrixItems(t, root), build.Item{Board: "nice_nano_v2", Shield: "macropad"})
	assert.FileExists(t, filepath.Join(root, "config", "macropad.keymap"))
}

func TestKeyboardNew_Prompts(t *testing.T) {
	app, prompter := newTestApp(t)
	root := newTestRepo(t, app)
	prompter.answers = []string{"my_pad", "", "3", ""}
	prompter.picks = []int{1}

	_, err := run(t, app, "keyboard", "new")
	require.NoError(t, err)
	assert.Equal(t, []string{"Select a layout:"}, prompter.titles)

	dir := filepath.Join(root, "boards", "shields", "my_pad")
	assert.FileExists(t, filepath.Join(dir, "my_pad.dtsi"))
	assert.FileExists(t, filepath.Join(dir, "my_pad_left.overlay"))
	assert.FileExists(t, filepath.Join(dir, "my_pad_right.overlay"))

	h, err := hardware.Load(filepath.Join(dir, "my_pad.zmk.yml"))
	require.NoError(t, err)
	assert.Equal(t, "My Pad", h.Name)
	assert.Equal(t, []string{"my_pad_left", "my_pad_right"}, h.Siblings)

	right, err := os.ReadFile(filepath.Join(dir, "my_pad_right.overlay"))
	require.NoError(t, err)
	assert.Contains(t, string(right), "col-offset = <6>;")
}

func TestKeyboardNew_ExistingFiles(t *testing.T) {
	app, _ := newTestApp(t)
	root := newTestRepo(t, app)
	args := []string{"keyboard", "new", "--id", "pad", "--name", "Pad", "--layout", "unibody", "--rows", "1", "--columns", "4"}

	_, err := run(t, app, args...)
	require.NoError(t, err)

	conf := filepath.Join(root, "boards", "shields", "pad", "pad.conf")
	writeFile(t, conf, "# edited\n")

	_, err = run(t, app, args...)
	var exists *generator.DestinationExistsError
	require.True(t, errors.As(err, &exists), "want DestinationExistsError, got %v", err)

	_, err = run(t, app, append(args, "--skip")...)
	require.NoError(t, err)
	data, err := os.ReadFile(conf)
	require.NoError(t, err)
	assert.Equal(t, "# edited\n", string(data))

	_, err = run(t, app, append(args, "--force")...)
	require.NoError(t, err)
	data, err = os.ReadFile(conf)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Configuration for Pad")
}

func TestKeyboardNew_DryRun(t *testing.T) {
	app, _ := newTestApp(t)
	root := newTestRepo(t, app)

	out, err := run(t, app, "keyboard", "new", "--id", "pad", "--name", "Pad", "--layout", "unibody", "--rows", "1", "--columns", "4", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "pad.overlay")
	assert.NoDirExists(t, filepath.Join(root, "boards", "shields", "pad"))
}

func TestKeyboardNew_Invalid(t *testing.T) {
	app, _ := newTestApp(t)
	root := newTestRepo(t, app)

	_, err := run(t, app, "keyboard", "new", "--id", "pad", "--name", "Pad", "--layout", "split", "--rows", "1", "--columns", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "even number of columns")
	assert.NoDirExists(t, filepath.Join(root, "boards", "shields", "pad"))

	_, err = run(t, app, "keyboard", "new", "--id", "pad", "--name", "Pad", "--layout", "ortho", "--rows", "1", "--columns", "4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown layout")

	_, err = run(t, app, "keyboard", "new", "--id", "pad", "--name", "Pad", "--layout", "unibody", "--rows", "1", "--columns", "4", "--interconnect", "xiao_header")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Could not find interconnect "xiao_header"`)
	assert.NoDirExists(t, filepath.Join(root, "boards", "shields", "pad"))
}
