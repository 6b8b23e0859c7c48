package db

import (
	"context"
	"testing"
	"time"

	"github.com/bitswalk/bazaar/src/common/errors"
)

func ptr[T any](v T) *T { return &v }

func TestCategoryLifecycle(t *testing.T) {
	d := newTestDatabase(t)
	repo := NewCategoryRepository(d)
	ctx := context.Background()

	root := &Category{Name: "Electronics"}
	if err := repo.Create(ctx, root); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	child := &Category{Name: "Phones", ParentID: ptr(root.ID)}
	if err := repo.Create(ctx, child); err != nil {
		t.Fatalf("Create child failed: %v", err)
	}

	if err := repo.Create(ctx, &Category{Name: "Orphan", ParentID: ptr(int64(999))}); !errors.Is(err, errors.ErrParentCategoryNotFound) {
		t.Fatalf("missing parent error = %v, want ErrParentCategoryNotFound", err)
	}
	if _, err := repo.Update(ctx, child.ID, "Phones", ptr(child.ID)); !errors.Is(err, errors.ErrCategorySelfParent) {
		t.Fatalf("self parent error = %v, want ErrCategorySelfParent", err)
	}

	updated, err := repo.Update(ctx, child.ID, "Smartphones", nil)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Smartphones" || updated.ParentID != nil {
		t.Fatalf("Update = %+v", updated)
	}

	if err := repo.Deactivate(ctx, root.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if err := repo.Deactivate(ctx, root.ID); !errors.Is(err, errors.ErrCategoryNotFound) {
		t.Fatalf("second Deactivate error = %v, want ErrCategoryNotFound", err)
	}
	if _, err := repo.Update(ctx, root.ID, "Back", nil); !errors.Is(err, errors.ErrCategoryNotFound) {
		t.Fatalf("Update inactive error = %v, want ErrCategoryNotFound", err)
	}
	if err := repo.Create(ctx, &Category{Name: "Tablets", ParentID: ptr(root.ID)}); !errors.Is(err, errors.ErrParentCategoryNotFound) {
		t.Fatalf("inactive parent error = %v, want ErrParentCategoryNotFound", err)
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != child.ID {
		t.Fatalf("ListActive = %+v", active)
	}
}

type catalogFixture struct {
	categories *CategoryRepository
	products   *ProductRepository
	reviews    *ReviewRepository
	category   int64
	seller     int64
	buyer      int64
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	d := newTestDatabase(t)
	f := &catalogFixture{
		categories: NewCategoryRepository(d),
		products:   NewProductRepository(d),
		reviews:    NewReviewRepository(d),
		seller:     insertUser(t, d, "seller@example.com", "seller"),
		buyer:      insertUser(t, d, "buyer@example.com", "buyer"),
	}
	c := &Category{Name: "Kitchen"}
	if err := f.categories.Create(context.Background(), c); err != nil {
		t.Fatalf("Create category failed: %v", err)
	}
	f.category = c.ID
	return f
}

func (f *catalogFixture) addProduct(t *testing.T, name, description string, price float64, stock int) *Product {
	t.Helper()
	p := &Product{Name: name, Price: price, Stock: stock, CategoryID: f.category, SellerID: f.seller}
	if description != "" {
		p.Description = ptr(description)
	}
	if err := f.products.Create(context.Background(), p); err != nil {
		t.Fatalf("Create product failed: %v", err)
	}
	return p
}

func productNames(products []Product) []string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return names
}

func TestProductListFilters(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	f.addProduct(t, "Copper kettle", "Stovetop kettle", 45, 4)
	f.addProduct(t, "Tea towel", "Cotton, pairs well with a kettle", 6.5, 0)
	f.addProduct(t, "Chef knife", "", 89.99, 2)
	gone := f.addProduct(t, "Old kettle", "", 10, 1)
	if err := f.products.Deactivate(ctx, gone.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	tests := []struct {
		name   string
		filter ProductFilter
		want   []string
	}{
		{"all active by id", ProductFilter{}, []string{"Copper kettle", "Tea towel", "Chef knife"}},
		{"price range", ProductFilter{MinPrice: ptr(5.0), MaxPrice: ptr(50.0)}, []string{"Copper kettle", "Tea towel"}},
		{"in stock", ProductFilter{InStock: ptr(true)}, []string{"Copper kettle", "Chef knife"}},
		{"sold out", ProductFilter{InStock: ptr(false)}, []string{"Tea towel"}},
		{"search ranks name first", ProductFilter{Search: "kettle"}, []string{"Copper kettle", "Tea towel"}},
		{"search all terms", ProductFilter{Search: "cotton kettle"}, []string{"Tea towel"}},
		{"search escapes wildcards", ProductFilter{Search: "%"}, []string{}},
		{"seller", ProductFilter{SellerID: ptr(f.seller)}, []string{"Copper kettle", "Tea towel", "Chef knife"}},
		{"other seller", ProductFilter{SellerID: ptr(f.buyer)}, []string{}},
		{"category", ProductFilter{CategoryID: ptr(f.category)}, []string{"Copper kettle", "Tea towel", "Chef knife"}},
		{"created today", ProductFilter{CreatedDate: ptr(time.Now().UTC())}, []string{"Copper kettle", "Tea towel", "Chef knife"}},
		{"created long ago", ProductFilter{CreatedDate: ptr(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC))}, []string{}},
		{"second page", ProductFilter{Page: 2, PageSize: 2}, []string{"Chef knife"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, _, err := f.products.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			got := productNames(products)
			if len(got) != len(tt.want) {
				t.Fatalf("List = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("List = %v, want %v", got, tt.want)
				}
			}
		})
	}

	_, total, err := f.products.List(ctx, ProductFilter{Page: 2, PageSize: 2})
	if err != nil || total != 3 {
		t.Fatalf("paged total = %d, %v; want 3", total, err)
	}

	if _, _, err := f.products.List(ctx, ProductFilter{MinPrice: ptr(10.0), MaxPrice: ptr(1.0)}); !errors.Is(err, errors.ErrInvalidPriceRange) {
		t.Fatalf("inverted range error = %v, want ErrInvalidPriceRange", err)
	}
}

func TestProductFilterValidatePaging(t *testing.T) {
	f := ProductFilter{Page: 0, PageSize: 1000}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if f.Page != 1 || f.PageSize != MaxPageSize {
		t.Fatalf("Validate paging = %d/%d", f.Page, f.PageSize)
	}
}

func TestProductCategoryRules(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	err := f.products.Create(ctx, &Product{Name: "Lamp", Price: 1, CategoryID: 999, SellerID: f.seller})
	if !errors.Is(err, errors.ErrCategoryNotFound) {
		t.Fatalf("create in missing category error = %v, want ErrCategoryNotFound", err)
	}

	p := f.addProduct(t, "Lamp", "", 20, 1)
	p.CategoryID = 999
	if _, err := f.products.Update(ctx, p); !errors.Is(err, errors.ErrCategoryInactive) {
		t.Fatalf("update into missing category error = %v, want ErrCategoryInactive", err)
	}

	p.CategoryID = f.category
	p.Name = "Desk lamp"
	p.ImageURL = ptr("https://cdn.example.com/lamp.png")
	updated, err := f.products.Update(ctx, p)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Desk lamp" || updated.ImageURL == nil || *updated.ImageURL != "https://cdn.example.com/lamp.png" {
		t.Fatalf("Update = %+v", updated)
	}

	if err := f.categories.Deactivate(ctx, f.category); err != nil {
		t.Fatalf("Deactivate category failed: %v", err)
	}
	if _, err := f.products.ListByCategory(ctx, f.category); !errors.Is(err, errors.ErrCategoryNotFound) {
		t.Fatalf("ListByCategory(inactive) error = %v, want ErrCategoryNotFound", err)
	}
}

func TestReviewsMaintainRating(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Kettle", "", 30, 5)

	first := &Review{UserID: f.buyer, ProductID: p.ID, Comment: "Boils fast", Grade: 4}
	if err := f.reviews.Create(ctx, first); err != nil {
		t.Fatalf("Create review failed: %v", err)
	}
	dup := &Review{UserID: f.buyer, ProductID: p.ID, Comment: "Again", Grade: 1}
	if err := f.reviews.Create(ctx, dup); !errors.Is(err, errors.ErrReviewExists) {
		t.Fatalf("duplicate review error = %v, want ErrReviewExists", err)
	}
	second := &Review{UserID: f.seller, ProductID: p.ID, Comment: "Solid", Grade: 2}
	if err := f.reviews.Create(ctx, second); err != nil {
		t.Fatalf("Create second review failed: %v", err)
	}

	assertRating := func(want float64) {
		t.Helper()
		got, err := f.products.GetActive(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetActive failed: %v", err)
		}
		if got.Rating != want {
			t.Fatalf("rating = %v, want %v", got.Rating, want)
		}
	}
	assertRating(3)

	updated, err := f.reviews.Update(ctx, first.ID, "Boils very fast", 5)
	if err != nil {
		t.Fatalf("Update review failed: %v", err)
	}
	if updated.ChangeTime.Before(updated.CommentTime) || updated.Grade != 5 {
		t.Fatalf("Update = %+v", updated)
	}
	assertRating(3.5)

	if err := f.reviews.Deactivate(ctx, second.ID); err != nil {
		t.Fatalf("Deactivate review failed: %v", err)
	}
	assertRating(5)

	if err := f.reviews.Deactivate(ctx, first.ID); err != nil {
		t.Fatalf("Deactivate review failed: %v", err)
	}
	assertRating(0)

	// an inactive review no longer blocks a new one
	if err := f.reviews.Create(ctx, &Review{UserID: f.buyer, ProductID: p.ID, Comment: "Back", Grade: 3}); err != nil {
		t.Fatalf("re-review failed: %v", err)
	}

	if err := f.products.Deactivate(ctx, p.ID); err != nil {
		t.Fatalf("Deactivate product failed: %v", err)
	}
	err = f.reviews.Create(ctx, &Review{UserID: f.seller, ProductID: p.ID, Comment: "Late", Grade: 3})
	if !errors.Is(err, errors.ErrProductNotFound) {
		t.Fatalf("review on inactive product error = %v, want ErrProductNotFound", err)
	}

	listed, err := f.reviews.ListByProduct(ctx, p.ID)
	if err != nil || len(listed) != 1 || listed[0].Comment != "Back" {
		t.Fatalf("ListByProduct = %+v, %v; want the one active review", listed, err)
	}
	none, err := f.reviews.ListByProduct(ctx, 999)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("ListByProduct(unknown) = %#v, %v; want an empty list", none, err)
	}
}
