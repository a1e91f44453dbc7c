package menu

import "strings"

// Catalog is the immutable set of items loaded from the page. It is safe
// for concurrent use.
type Catalog struct {
	items    []MenuItem
	sections []Section
}

func NewCatalog(sections []Section, items []MenuItem) *Catalog {
	return &Catalog{
		items:    append([]MenuItem(nil), items...),
		sections: append([]Section(nil), sections...),
	}
}

func (c *Catalog) Len() int { return len(c.items) }

func (c *Catalog) Get(id int) (MenuItem, bool) {
	if id < 0 || id >= len(c.items) {
		return MenuItem{}, false
	}
	return c.items[id], true
}

func (c *Catalog) Items() []MenuItem {
	return append([]MenuItem(nil), c.items...)
}

// Categories lists the filter choices: "all" first, then each distinct
// category in page order.
func (c *Catalog) Categories() []Category {
	out := []Category{{Slug: AllCategories, Label: "All Items"}}
	seen := map[string]struct{}{}
	for _, it := range c.items {
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, Category{Slug: it.Category, Label: Label(it.Category)})
	}
	return out
}

type SectionView struct {
	Title    string     `json:"title"`
	Category string     `json:"category"`
	Items    []MenuItem `json:"items"`
}

type View struct {
	Category string        `json:"category"`
	Query    string        `json:"query"`
	Sections []SectionView `json:"sections"`
}

// Visible reports how many items the view shows.
func (v View) Visible() int {
	n := 0
	for _, s := range v.Sections {
		n += len(s.Items)
	}
	return n
}

// View returns the sections and items visible under a category filter and a
// search query. An empty category means "all"; the query is matched
// case-insensitively against name and description. Sections left with no
// visible item are omitted.
func (c *Catalog) View(category, query string) View {
	if category == "" {
		category = AllCategories
	}
	q := strings.ToLower(strings.TrimSpace(query))

	v := View{Category: category, Query: query, Sections: []SectionView{}}
	for _, s := range c.sections {
		sv := SectionView{Title: s.Title, Category: s.Category}
		for _, id := range s.ItemIDs {
			it := c.items[id]
			if matchesFilter(it, category) && matchesSearch(it, q) {
				sv.Items = append(sv.Items, it)
			}
		}
		if len(sv.Items) > 0 {
			v.Sections = append(v.Sections, sv)
		}
	}
	return v
}

func matchesFilter(it MenuItem, category string) bool {
	return category == AllCategories || it.Category == category
}

func matchesSearch(it MenuItem, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.Description), q)
}
