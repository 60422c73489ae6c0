package promotions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
)

func setupPromotionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	promotions := `
CREATE TABLE IF NOT EXISTS promotions (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  scope TEXT NOT NULL,
  type TEXT NOT NULL,
  value TEXT NOT NULL,
  min_order_total TEXT,
  product_ids TEXT,
  categories TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  start_date DATETIME NOT NULL,
  end_date DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	comboItems := `
CREATE TABLE IF NOT EXISTS promotion_combo_items (
  id TEXT PRIMARY KEY,
  promotion_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  required_qty INTEGER NOT NULL DEFAULT 1,
  UNIQUE (promotion_id, product_id)
);`

	require.NoError(t, db.Exec(promotions).Error)
	require.NoError(t, db.Exec(comboItems).Error)
	return db
}

func seedPromotion(t *testing.T, repo *Repository, promo *models.Promotion) *models.Promotion {
	t.Helper()
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	created, err := repo.CreatePromotion(context.Background(), promo)
	require.NoError(t, err)
	return created
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	repo := NewRepository(setupPromotionsTestDB(t))
	now := time.Now().UTC().Truncate(time.Second)

	promo := seedPromotion(t, repo, &models.Promotion{
		Name:      "combo deal",
		Scope:     enums.ScopeCombo,
		Type:      enums.TypeFixedPriceCombo,
		Value:     dec(50000),
		IsActive:  true,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
		ComboItems: []models.PromotionComboItem{
			{ID: uuid.New(), ProductID: "A", RequiredQty: 2},
			{ID: uuid.New(), ProductID: "B", RequiredQty: 1},
		},
	})

	loaded, err := repo.FindByID(context.Background(), promo.ID)
	require.NoError(t, err)
	assert.Equal(t, "combo deal", loaded.Name)
	require.Len(t, loaded.ComboItems, 2)
}

func TestRepositoryFindByIDNotFound(t *testing.T) {
	repo := NewRepository(setupPromotionsTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListFilters(t *testing.T) {
	repo := NewRepository(setupPromotionsTestDB(t))
	now := time.Now().UTC()

	seedPromotion(t, repo, &models.Promotion{
		Name: "products", Scope: enums.ScopeProduct, Type: enums.TypePercent,
		Value: dec(10), ProductIDs: []string{"latte"}, IsActive: true,
		StartDate: now, EndDate: now.Add(time.Hour),
	})
	seedPromotion(t, repo, &models.Promotion{
		Name: "categories", Scope: enums.ScopeCategory, Type: enums.TypePercent,
		Value: dec(5), Categories: []string{"coffee"}, IsActive: false,
		StartDate: now, EndDate: now.Add(time.Hour),
	})

	scope := enums.ScopeProduct
	rows, err := repo.List(context.Background(), ListFilters{Scope: &scope})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "products", rows[0].Name)

	active := false
	rows, err = repo.List(context.Background(), ListFilters{IsActive: &active})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "categories", rows[0].Name)
}

func TestRepositoryFindActiveWindow(t *testing.T) {
	repo := NewRepository(setupPromotionsTestDB(t))
	now := time.Now().UTC()

	seedPromotion(t, repo, &models.Promotion{
		Name: "live", Scope: enums.ScopeOrder, Type: enums.TypePercent, Value: dec(10),
		IsActive: true, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
	})
	seedPromotion(t, repo, &models.Promotion{
		Name: "expired", Scope: enums.ScopeOrder, Type: enums.TypePercent, Value: dec(10),
		IsActive: true, StartDate: now.Add(-48 * time.Hour), EndDate: now.Add(-24 * time.Hour),
	})
	seedPromotion(t, repo, &models.Promotion{
		Name: "disabled", Scope: enums.ScopeOrder, Type: enums.TypePercent, Value: dec(10),
		IsActive: false, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
	})

	rows, err := repo.FindActive(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "live", rows[0].Name)
}

func TestRepositoryFindByScopeExcludes(t *testing.T) {
	repo := NewRepository(setupPromotionsTestDB(t))
	now := time.Now().UTC()

	first := seedPromotion(t, repo, &models.Promotion{
		Name: "first", Scope: enums.ScopeProduct, Type: enums.TypePercent, Value: dec(10),
		ProductIDs: []string{"latte"}, IsActive: true,
		StartDate: now, EndDate: now.Add(time.Hour),
	})
	seedPromotion(t, repo, &models.Promotion{
		Name: "second", Scope: enums.ScopeProduct, Type: enums.TypePercent, Value: dec(10),
		ProductIDs: []string{"mocha"}, IsActive: true,
		StartDate: now, EndDate: now.Add(time.Hour),
	})

	rows, err := repo.FindByScope(context.Background(), enums.ScopeProduct, first.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "second", rows[0].Name)
}

func TestRepositoryUpdateReplacesComboItems(t *testing.T) {
	repo := NewRepository(setupPromotionsTestDB(t))
	now := time.Now().UTC()

	promo := seedPromotion(t, repo, &models.Promotion{
		Name: "combo", Scope: enums.ScopeCombo, Type: enums.TypeFixedAmount, Value: dec(2000),
		IsActive: true, StartDate: now, EndDate: now.Add(time.Hour),
		ComboItems: []models.PromotionComboItem{
			{ID: uuid.New(), ProductID: "A", RequiredQty: 1},
		},
	})

	promo.ComboItems = []models.PromotionComboItem{
		{ProductID: "B", RequiredQty: 2},
		{ProductID: "C", RequiredQty: 1},
	}
	_, err := repo.UpdatePromotion(context.Background(), promo)
	require.NoError(t, err)

	loaded, err := repo.FindByID(context.Background(), promo.ID)
	require.NoError(t, err)
	require.Len(t, loaded.ComboItems, 2)
	ids := []string{loaded.ComboItems[0].ProductID, loaded.ComboItems[1].ProductID}
	assert.NotContains(t, ids, "A")
}

func TestRepositoryDeleteRemovesComboItems(t *testing.T) {
	repo := NewRepository(setupPromotionsTestDB(t))
	now := time.Now().UTC()

	promo := seedPromotion(t, repo, &models.Promotion{
		Name: "combo", Scope: enums.ScopeCombo, Type: enums.TypeFixedAmount, Value: dec(2000),
		IsActive: true, StartDate: now, EndDate: now.Add(time.Hour),
		ComboItems: []models.PromotionComboItem{
			{ID: uuid.New(), ProductID: "A", RequiredQty: 1},
		},
	})

	require.NoError(t, repo.DeletePromotion(context.Background(), promo.ID))

	_, err := repo.FindByID(context.Background(), promo.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, repo.DB(context.Background()).Model(&models.PromotionComboItem{}).
		Where("promotion_id = ?", promo.ID).Count(&count).Error)
	assert.Zero(t, count)
}
