// Package menu turns the pre-rendered restaurant page into an immutable
// catalog of menu items and answers filter and search queries over it.
package menu

import "strings"

// AllCategories is the filter value that matches every item.
const AllCategories = "all"

// MenuItem is one dish read from the page. ID is the item's position in
// page order.
type MenuItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Rating      int    `json:"rating"`
	IsNew       bool   `json:"isNew"`
}

// Section is a heading on the page together with the items listed under it.
type Section struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	ItemIDs  []int  `json:"item_ids"`
}

type Category struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// Stars renders a rating as five filled or hollow stars.
func Stars(rating int) string {
	rating = min(max(rating, 0), 5)
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
