package menu

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const (
	sectionSelector     = ".menu-section"
	itemSelector        = ".menu-item"
	nameSelector        = ".menu-item-name"
	descriptionSelector = ".menu-item-description"
	priceSelector       = ".menu-item-price"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// RatingFunc assigns a rating to an item as it is loaded.
type RatingFunc func() int

// RandomRating gives every dish four or five stars.
func RandomRating() int {
	return rand.IntN(2) + 4
}

// LoadFile parses the menu page at path.
func LoadFile(path string, rating RatingFunc) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open menu page: %w", err)
	}
	defer f.Close()

	return Parse(f, rating)
}

// Parse reads every .menu-item inside a .menu-section. Items are numbered
// in page order starting at zero; items outside any section are ignored.
// A nil rating uses RandomRating.
func Parse(r io.Reader, rating RatingFunc) (*Catalog, error) {
	if rating == nil {
		rating = RandomRating
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse menu page: %w", err)
	}

	var (
		items    []MenuItem
		sections []Section
	)

	doc.Find(sectionSelector).Each(func(_ int, sec *goquery.Selection) {
		title := text(sec.Find("h2").First())
		s := Section{
			Title:    title,
			Category: Slugify(title),
		}

		sec.Find(itemSelector).Each(func(_ int, el *goquery.Selection) {
			it := MenuItem{
				ID:          len(items),
				Name:        textWithoutBadges(el.Find(nameSelector).First()),
				Description: text(el.Find(descriptionSelector).First()),
				Price:       text(el.Find(priceSelector).First()),
				Category:    s.Category,
				Rating:      rating(),
				IsNew:       el.Find("span").Length() > 0,
			}
			items = append(items, it)
			s.ItemIDs = append(s.ItemIDs, it.ID)
		})

		sections = append(sections, s)
	})

	return NewCatalog(sections, items), nil
}

// Slugify turns a section heading into a category: lower case, words joined
// by hyphens, and the "new" badge word dropped.
func Slugify(heading string) string {
	s := whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(heading)), "-")

	parts := strings.Split(s, "-")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || p == "new" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "-")
}

// Label is the human form of a category slug.
func Label(slug string) string {
	if slug == "" {
		return ""
	}
	r := []rune(strings.ReplaceAll(slug, "-", " "))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// textWithoutBadges drops nested <span> badges such as "New" from a name.
func textWithoutBadges(sel *goquery.Selection) string {
	c := sel.Clone()
	c.Find("span").Remove()
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(c.Text(), " "))
}
