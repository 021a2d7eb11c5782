package store

import "context"

// SeedCategory is a category and its subcategories, matched by slug.
type SeedCategory struct {
	Name, Slug    string
	SubCategories [][2]string // name, slug
}

// StandardCategories is the default storefront taxonomy.
var StandardCategories = []SeedCategory{
	{Name: "Men", Slug: "men", SubCategories: [][2]string{
		{"T-shirts", "men-tshirts"},
		{"Shirts", "men-shirts"},
		{"Jeans", "men-jeans"},
		{"Trousers", "men-trousers"},
		{"Suits", "men-suits"},
		{"Jackets", "men-jackets"},
		{"Activewear", "men-activewear"},
		{"Underwear", "men-underwear"},
	}},
	{Name: "Women", Slug: "women", SubCategories: [][2]string{
		{"Dresses", "women-dresses"},
		{"Tops", "women-tops"},
		{"Blouses", "women-blouses"},
		{"Jeans", "women-jeans"},
		{"Skirts", "women-skirts"},
		{"Activewear", "women-activewear"},
		{"Lingerie", "women-lingerie"},
		{"Jackets", "women-jackets"},
	}},
	{Name: "Kids", Slug: "kids", SubCategories: [][2]string{
		{"Boys", "kids-boys"},
		{"Girls", "kids-girls"},
		{"Baby", "kids-baby"},
		{"School Uniforms", "kids-school-uniforms"},
		{"Accessories", "kids-accessories"},
	}},
}

// SeedReport counts the rows SeedCategories inserted.
type SeedReport struct {
	Categories    int
	SubCategories int
}

// SeedCategories creates whatever part of seed is missing.
func (s *Store) SeedCategories(ctx context.Context, seed []SeedCategory) (SeedReport, error) {
	var r SeedReport
	for _, sc := range seed {
		id, created, err := s.EnsureCategory(ctx, sc.Name, sc.Slug)
		if err != nil {
			return r, err
		}
		if created {
			r.Categories++
		}
		for _, sub := range sc.SubCategories {
			created, err := s.EnsureSubCategory(ctx, id, sub[0], sub[1])
			if err != nil {
				return r, err
			}
			if created {
				r.SubCategories++
			}
		}
	}
	return r, nil
}
