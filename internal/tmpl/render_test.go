package tmpl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardDTS = `/dts-v1/;

/ {
    model = "${name}";
    compatible = "${id}";

    <%block name="kscan">
    A
    </%block>
};
`

const myboardDTS = `<%inherit file="board.dts"/>
<%set var="name" value="Foo"/>
<%block name="kscan">
    B
</%block>
`

func TestRender_BoardVariant(t *testing.T) {
	store := newTestStore(t, map[string]string{
		"board.dts": boardDTS,
		"myboard":   myboardDTS,
	})

	out := resolveAndRender(t, store, "myboard", Context{"name": "Foo", "id": "x,y"})

	assert.Contains(t, out, "B")
	assert.NotContains(t, out, "A\n")
	assert.Contains(t, out, `model = "Foo";`)
	assert.Contains(t, out, `compatible = "x,y";`)
	assert.NotContains(t, out, "${")
	assert.NotContains(t, out, "<%")
}

func TestRender_Deterministic(t *testing.T) {
	store := newTestStore(t, map[string]string{
		"board.dts": boardDTS,
		"myboard":   myboardDTS,
	})

	resolved, err := store.Resolve("myboard")
	require.NoError(t, err)

	ctx := Context{"name": "Foo", "id": "x,y"}
	first, err := Render(resolved, ctx)
	require.NoError(t, err)
	second, err := Render(resolved, ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_MissingVariable(t *testing.T) {
	_, err := RenderString("greeting", "hello\n${x}", Context{"y": "1"})
	require.Error(t, err)

	var missing *MissingVariableError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "x", missing.Name)
	assert.Equal(t, "greeting", missing.Template)
	assert.Equal(t, 2, missing.Line)
	assert.Contains(t, err.Error(), `"x"`)
}

func TestRender_MissingVariableReportsDeclaringTemplate(t *testing.T) {
	store := newTestStore(t, map[string]string{
		"base":    `<%block name="b">${inner}</%block>`,
		"variant": `<%inherit file="base"/><%block name="b">${outer}</%block>`,
	})

	resolved, err := store.Resolve("variant")
	require.NoError(t, err)

	_, err = Render(resolved, nil)
	var missing *MissingVariableError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "variant", missing.Template)
	assert.Equal(t, "outer", missing.Name)
}

func TestRender_ContextOverridesDefaults(t *testing.T) {
	src := `<%set var="mcu" value="nrf52840"/>${mcu}`

	out, err := RenderString("t", src, nil)
	require.NoError(t, err)
	assert.Equal(t, "nrf52840", out)

	out, err = RenderString("t", src, Context{"mcu": "rp2040"})
	require.NoError(t, err)
	assert.Equal(t, "rp2040", out)
}

func TestRender_Filters(t *testing.T) {
	ctx := Context{"id": "corne-left", "name": "my board"}

	tests := []struct {
		src  string
		want string
	}{
		{"${id | kconfig}", "CORNE_LEFT"},
		{"CONFIG_SHIELD_${id | kconfig}=y", "CONFIG_SHIELD_CORNE_LEFT=y"},
		{"${id | snake}", "corne_left"},
		{"${id | pascal}", "CorneLeft"},
		{"${name | title}", "My Board"},
		{"${name | upper | quote}", `"MY BOARD"`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			out, err := RenderString("t", tt.src, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRender_ValuesAreNotReparsed(t *testing.T) {
	out, err := RenderString("t", "${a}", Context{"a": `${b}<%block name="x"/>`})
	require.NoError(t, err)
	assert.Equal(t, `${b}<%block name="x"/>`, out)
}

func TestRenderString_RejectsInheritance(t *testing.T) {
	_, err := RenderString("t", `<%inherit file="base"/>x`, nil)

	var unknown *UnknownParentError
	assert.True(t, errors.As(err, &unknown))
}

func TestRender_EmptyTemplate(t *testing.T) {
	out, err := RenderString("empty", "", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRender_DefaultWithDevicetreeValue(t *testing.T) {
	src := "<%set var=\"pins\" value=\"<&gpio0 1 0>\"/>\ncol-gpios = ${pins};\n"

	out, err := RenderString("kscan", src, Context{})
	require.NoError(t, err)
	assert.Equal(t, "col-gpios = <&gpio0 1 0>;\n", out)
}
