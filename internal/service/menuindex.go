package service

// CategoryOther is the category for items that are no longer (or never
// were) on the menu.
const CategoryOther = "Other"

// CategoryIndex maps item name → category. It is rebuilt from the
// current menu snapshot at the start of each classification or
// analytics run, never kept between requests.
type CategoryIndex map[string]string

// BuildCategoryIndex makes one pass over the menu snapshot. Duplicate
// names resolve last-write-wins; an empty menu yields an index that
// answers CategoryOther for everything.
func BuildCategoryIndex(menu []MenuItem) CategoryIndex {
	idx := make(CategoryIndex, len(menu))
	for _, m := range menu {
		cat := m.Category
		if cat == "" {
			cat = CategoryOther
		}
		idx[m.Name] = cat
	}
	return idx
}

// Category resolves an item name, defaulting to CategoryOther. Safe on
// a nil index.
func (idx CategoryIndex) Category(name string) string {
	if cat, ok := idx[name]; ok {
		return cat
	}
	return CategoryOther
}
