package menu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LittleLemon/internal/menu"
)

func ids(v menu.View) []int {
	var out []int
	for _, s := range v.Sections {
		for _, it := range s.Items {
			out = append(out, it.ID)
		}
	}
	return out
}

func TestCatalog_Get(t *testing.T) {
	c := loadPage(t)

	it, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Grilled Fish", it.Name)

	_, ok = c.Get(3)
	assert.False(t, ok)
	_, ok = c.Get(-1)
	assert.False(t, ok)
}

func TestCatalog_Categories(t *testing.T) {
	c := loadPage(t)

	assert.Equal(t, []menu.Category{
		{Slug: "all", Label: "All Items"},
		{Slug: "appetizers", Label: "Appetizers"},
		{Slug: "main-courses", Label: "Main courses"},
	}, c.Categories())
}

func TestCatalog_View_Filter(t *testing.T) {
	c := loadPage(t)

	all := c.View("", "")
	assert.Equal(t, "all", all.Category)
	assert.Equal(t, []int{0, 1, 2}, ids(all))
	assert.Len(t, all.Sections, 2)

	mains := c.View("main-courses", "")
	assert.Equal(t, []int{2}, ids(mains))
	require.Len(t, mains.Sections, 1, "empty sections are hidden")
	assert.Equal(t, "Main   Courses New", mains.Sections[0].Title)

	none := c.View("drinks", "")
	assert.Empty(t, none.Sections)
	assert.Equal(t, 0, none.Visible())
}

func TestCatalog_View_Search(t *testing.T) {
	c := loadPage(t)

	assert.Equal(t, []int{0, 2}, ids(c.View("all", "GRILLED")))
	assert.Equal(t, []int{1}, ids(c.View("all", "feta")), "matches description")
	assert.Equal(t, []int{0}, ids(c.View("appetizers", "grilled")), "search respects active filter")
	assert.Empty(t, ids(c.View("appetizers", "fish")))
	assert.Equal(t, 3, c.View("all", "   ").Visible())
}
