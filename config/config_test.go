package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles-dyfis-net/isg-state-machine-framework/config"
)

func TestGetStringAndDefault(t *testing.T) {
	tree, err := config.LoadString(`
General:
  term: VT100
`)
	require.NoError(t, err)

	v, err := tree.GetString(config.Path{"General"}, "term")
	require.NoError(t, err)
	assert.Equal(t, "VT100", v)

	assert.Equal(t, "fallback", tree.GetStringDefault(config.Path{"General"}, "missing", "fallback"))

	_, err = tree.GetString(config.Path{"General"}, "missing")
	var keyMissing *config.KeyMissingError
	assert.ErrorAs(t, err, &keyMissing)
}

func TestGetEscaped(t *testing.T) {
	tree, err := config.LoadString(`
os:
  endline: "\\r\\n"
`)
	require.NoError(t, err)

	v, err := tree.GetEscaped(config.Path{"os"}, "endline")
	require.NoError(t, err)
	assert.Equal(t, "\r\n", v)
}

func TestGetItemsPrefixAndSort(t *testing.T) {
	tree, err := config.LoadString(`
screens:
  UnitX:
    MENU:
      default:
        redirect_2: ["always", "b"]
        redirect_10: ["always", "c"]
        redirect_1: ["always", "a"]
        verify_login: [1, "READY"]
`)
	require.NoError(t, err)

	path := config.Path{"screens", "UnitX", "MENU", "default"}
	items := tree.GetItems(path, "redirect_", true, config.NumericSuffixOrder)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"1", "2", "10"}, []string{items[0].Name, items[1].Name, items[2].Name})

	verifyItems := tree.GetItems(path, "verify_", false, nil)
	require.Len(t, verifyItems, 1)
	assert.Equal(t, "verify_login", verifyItems[0].Name)
}

func TestUpdateFromArgs(t *testing.T) {
	tree := config.New()
	require.NoError(t, tree.UpdateFromArgs([]string{"General.term=VT220", "Connect.spawnString=/bin/true"}))

	v, err := tree.GetString(config.Path{"General"}, "term")
	require.NoError(t, err)
	assert.Equal(t, "VT220", v)

	err = tree.UpdateFromArgs([]string{"bad-arg-no-equals"})
	var badFormat *config.BadOptionFormatError
	assert.ErrorAs(t, err, &badFormat)
}
