package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhvub/coffeeshop-backend/pkg/db/models"
	"github.com/minhvub/coffeeshop-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_name TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  total_discount TEXT NOT NULL,
  final_total TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsTable := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  unit_price TEXT NOT NULL,
  quantity INTEGER NOT NULL
);`

	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(itemsTable).Error)
	return db
}

func seedOrder(t *testing.T, repo *Repository, customer string, status enums.OrderStatus, total int64) *models.Order {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.Order{
		ID:            uuid.New(),
		CustomerName:  customer,
		Status:        status,
		Subtotal:      decimal.NewFromInt(total),
		TotalDiscount: decimal.Zero,
		FinalTotal:    decimal.NewFromInt(total),
		Items: []models.OrderItem{{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Name:      "latte",
			Category:  "coffee",
			UnitPrice: decimal.NewFromInt(total),
			Quantity:  1,
		}},
	})
	require.NoError(t, err)
	return created
}

func TestOrderRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))

	order := seedOrder(t, repo, "Linh", enums.OrderPending, 45000)

	loaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Linh", loaded.CustomerName)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "latte", loaded.Items[0].Name)
}

func TestOrderRepositoryFilter(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))

	seedOrder(t, repo, "Linh Nguyen", enums.OrderPending, 45000)
	seedOrder(t, repo, "Minh Tran", enums.OrderDelivered, 80000)
	seedOrder(t, repo, "Anh Pham", enums.OrderCancelled, 30000)

	status := enums.OrderPending
	rows, err := repo.Filter(context.Background(), FilterParams{Status: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Linh Nguyen", rows[0].CustomerName)

	notCancelled := enums.OrderCancelled
	rows, err = repo.Filter(context.Background(), FilterParams{StatusNot: &notCancelled})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.Filter(context.Background(), FilterParams{Keyword: "minh"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Minh Tran", rows[0].CustomerName)
}

func TestOrderRepositoryUpdateStatus(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))

	order := seedOrder(t, repo, "Linh", enums.OrderPending, 45000)

	updated, err := repo.UpdateStatus(context.Background(), order.ID, enums.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderConfirmed, updated.Status)

	_, err = repo.UpdateStatus(context.Background(), uuid.New(), enums.OrderConfirmed)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepositoryStats(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))

	seedOrder(t, repo, "Linh", enums.OrderDelivered, 80000)
	seedOrder(t, repo, "Minh", enums.OrderDelivered, 20000)
	seedOrder(t, repo, "Anh", enums.OrderPending, 30000)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)

	// both delivered orders were created today
	require.Len(t, stats.Daily, 1)
	assert.True(t, stats.Daily[0].TotalRevenue.Equal(decimal.NewFromInt(100000)),
		"revenue %s", stats.Daily[0].TotalRevenue)
	assert.EqualValues(t, 2, stats.Daily[0].Count)

	byStatus := map[enums.OrderStatus]int64{}
	for _, sc := range stats.Status {
		byStatus[sc.Status] = sc.Count
	}
	assert.EqualValues(t, 2, byStatus[enums.OrderDelivered])
	assert.EqualValues(t, 1, byStatus[enums.OrderPending])
}

func TestOrderRepositoryListNewestFirst(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))

	first := seedOrder(t, repo, "Linh", enums.OrderPending, 45000)
	time.Sleep(10 * time.Millisecond)
	second := seedOrder(t, repo, "Minh", enums.OrderPending, 30000)

	rows, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
}
