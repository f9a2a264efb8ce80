package graph

import (
	"strconv"

	"paddock/internal/lineup/store"
)

const (
	fallbackStyleID = "0"
	fallbackName    = "CTOR_NOT_FOUND"
	fallbackColor   = "#808080"
)

// Style is a constructor's legend entry for the rendering client.
type Style struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ColorPrimary   string  `json:"colorPrimary"`
	ColorSecondary *string `json:"colorSecondary"`
}

// BuildStyles lists every constructor by ascending id, preceded by the
// fallback entry the client uses for unmapped constructor ids. Id 0 belongs
// to the fallback, so a constructor recorded with id 0 is not listed.
func BuildStyles(st *store.Store) []Style {
	out := []Style{{ID: fallbackStyleID, Name: fallbackName, ColorPrimary: fallbackColor}}
	if st == nil {
		return out
	}
	for _, id := range st.ConstructorIDs() {
		if id == 0 {
			continue
		}
		c, _ := st.Constructor(id)
		style := Style{
			ID:             strconv.Itoa(int(c.ID)),
			Name:           c.Name,
			ColorPrimary:   fallbackColor,
			ColorSecondary: c.ColorSecondary,
		}
		if c.ColorPrimary != nil && *c.ColorPrimary != "" {
			style.ColorPrimary = *c.ColorPrimary
		}
		out = append(out, style)
	}
	return out
}
