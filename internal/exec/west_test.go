package exec

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		opts BuildOptions
		want []string
	}{
		{
			name: "board only",
			opts: BuildOptions{Board: "planck_rev6"},
			want: []string{"build", "-s", "zmk/app", "-d", "build/planck_rev6", "-b", "planck_rev6"},
		},
		{
			name: "shield with config",
			opts: BuildOptions{Board: "nice_nano_v2", Shield: "corne_left", ConfigDir: "/repo/config"},
			want: []string{
				"build", "-s", "zmk/app", "-d", "build/corne_left-nice_nano_v2", "-b", "nice_nano_v2",
				"--", "-DSHIELD=corne_left", "-DZMK_CONFIG=/repo/config",
			},
		},
		{
			name: "everything",
			opts: BuildOptions{
				Board:        "nice_nano_v2",
				Shield:       "corne_left nice_view_adapter nice_view",
				Snippet:      "studio-rpc-usb-uart",
				CMakeArgs:    "-DCONFIG_ZMK_STUDIO=y  -DCONFIG_ZMK_USB_LOGGING=y",
				ArtifactName: "corne_left_studio",
				Pristine:     true,
			},
			want: []string{
				"build", "-s", "zmk/app", "-d", "build/corne_left_studio", "-b", "nice_nano_v2",
				"-S", "studio-rpc-usb-uart", "-p",
				"--", "-DSHIELD=corne_left nice_view_adapter nice_view",
				"-DCONFIG_ZMK_STUDIO=y", "-DCONFIG_ZMK_USB_LOGGING=y",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildArgs(tt.opts))
		})
	}
}

func TestBuildOptions_Artifact(t *testing.T) {
	assert.Equal(t, "planck_rev6", BuildOptions{Board: "planck_rev6"}.Artifact())
	assert.Equal(t, "corne_left-nice_view-nice_nano_v2", BuildOptions{Board: "nice_nano_v2", Shield: "corne_left nice_view"}.Artifact())
	assert.Equal(t, "custom", BuildOptions{Board: "b", ArtifactName: "custom"}.Artifact())
}

func TestWest_Commands(t *testing.T) {
	var stdout bytes.Buffer
	w := NewWest(newMockExecutor(&Options{Stdout: &stdout}))
	ctx := context.Background()

	require.NoError(t, w.Init(ctx, "config"))
	require.NoError(t, w.Update(ctx))
	require.NoError(t, w.Build(ctx, BuildOptions{Board: "planck_rev6"}))

	out := stdout.String()
	assert.Contains(t, out, "west init -l config")
	assert.Contains(t, out, "west update")
	assert.Contains(t, out, "west build -s zmk/app -d build/planck_rev6 -b planck_rev6")
}
