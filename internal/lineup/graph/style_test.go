package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/store"
)

func strPtr(s string) *string { return &s }

func TestBuildStyles(t *testing.T) {
	st, err := store.New(models.Records{Constructors: []models.Constructor{
		{ID: 131, Ref: "mercedes", Name: "Mercedes", ColorPrimary: strPtr("#00D2BE"), ColorSecondary: strPtr("#000000")},
		{ID: 1, Ref: "mclaren", Name: "McLaren", ColorPrimary: strPtr("#FF8700")},
		{ID: 3, Ref: "williams", Name: "Williams"},
	}})
	require.NoError(t, err)

	styles := BuildStyles(st)
	require.Len(t, styles, 4)

	assert.Equal(t, Style{ID: "0", Name: "CTOR_NOT_FOUND", ColorPrimary: "#808080"}, styles[0])
	assert.Equal(t, []string{"0", "1", "3", "131"}, []string{styles[0].ID, styles[1].ID, styles[2].ID, styles[3].ID})
	assert.Equal(t, "#FF8700", styles[1].ColorPrimary)
	assert.Nil(t, styles[1].ColorSecondary)
	assert.Equal(t, "#808080", styles[2].ColorPrimary, "missing primary falls back to grey")

	out, err := json.Marshal(styles[:1])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"0","name":"CTOR_NOT_FOUND","colorPrimary":"#808080","colorSecondary":null}]`, string(out))
}

func TestBuildStyles_NilStore(t *testing.T) {
	styles := BuildStyles(nil)
	require.Len(t, styles, 1)
	assert.Equal(t, "0", styles[0].ID)
}

func TestBuildStyles_ConstructorZeroDoesNotShadowFallback(t *testing.T) {
	st, err := store.New(models.Records{Constructors: []models.Constructor{
		{ID: 0, Ref: "unknown", Name: "Unknown", ColorPrimary: strPtr("#FFFFFF")},
		{ID: 1, Ref: "mclaren", Name: "McLaren"},
	}})
	require.NoError(t, err)

	styles := BuildStyles(st)
	require.Len(t, styles, 2)
	assert.Equal(t, Style{ID: "0", Name: "CTOR_NOT_FOUND", ColorPrimary: "#808080"}, styles[0])
	assert.Equal(t, "1", styles[1].ID)
}
