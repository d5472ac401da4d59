package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"testing"
	"time"

	"karat/internal/database"
	"karat/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	// The real migrations build the schema the tests run against.
	if err := database.RunMigrations(testDB, "../../migrations", zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func seedProduct(t *testing.T, table, id, name string, price int64) {
	t.Helper()
	query := fmt.Sprintf(
		`INSERT INTO %s (id, name, price, sizes) VALUES ($1, $2, $3, '{}')
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price`,
		table,
	)
	_, err := testDB.Exec(query, id, name, price)
	require.NoError(t, err)
}

func seedConsolidated(t *testing.T, id, sourceTable, name string, price int64) {
	t.Helper()
	_, err := testDB.Exec(
		`INSERT INTO products (id, source_table, name, price, sizes) VALUES ($1, $2, $3, $4, '{}')
		 ON CONFLICT (id, source_table) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price`,
		id, sourceTable, name, price,
	)
	require.NoError(t, err)
}

func clearCatalog(t *testing.T, id string) {
	t.Helper()
	for _, table := range domain.ProductTables {
		_, err := testDB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
		require.NoError(t, err)
	}
	_, err := testDB.Exec(`DELETE FROM products WHERE id = $1`, id)
	require.NoError(t, err)
}

func TestFindByID_RejectsUnknownTable(t *testing.T) {
	repo := NewProductRepository(testDB)

	_, err := repo.FindByID(context.Background(), "users; DROP TABLE orders", "x")
	require.ErrorIs(t, err, ErrUnknownTable)
}

func TestFindByID_NotFound(t *testing.T) {
	repo := NewProductRepository(testDB)

	_, err := repo.FindByID(context.Background(), "chain_products", "no-such-id")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestFindByID_DecodesSizesAndLengths(t *testing.T) {
	id := "chain-lengths-1"
	clearCatalog(t, id)
	_, err := testDB.Exec(
		`INSERT INTO chain_products (id, name, price, sizes, lengths_and_prices)
		 VALUES ($1, 'Rope Chain', 14000, ARRAY['S','M','L'],
		         '[{"identifier":"18in","price":14000,"payment_price_ref":"price_18"},
		           {"identifier":"22in","price":16500,"payment_price_ref":"price_22"}]'::JSONB)`,
		id,
	)
	require.NoError(t, err)

	repo := NewProductRepository(testDB)
	product, err := repo.FindByID(context.Background(), "chain_products", id)
	require.NoError(t, err)

	assert.Equal(t, []string{"S", "M", "L"}, product.Sizes)
	require.Len(t, product.LengthsAndPrices, 2)
	assert.Equal(t, int64(16500), product.LengthsAndPrices[1].Price)
	assert.Equal(t, "price_22", product.LengthsAndPrices[1].PaymentPriceRef)
}

// The same id living in two category tables resolves to the earlier table
// in the fixed order, deterministically.
func TestFindAnyByID_EarlierTableWins(t *testing.T) {
	id := "dup-across-tables"
	clearCatalog(t, id)
	seedProduct(t, "watch_products", id, "Watch Version", 50000)
	seedProduct(t, "pendant_products", id, "Pendant Version", 9000)

	repo := NewProductRepository(testDB)
	product, table, err := repo.FindAnyByID(context.Background(), domain.ProductTables, id)
	require.NoError(t, err)

	assert.Equal(t, "watch_products", table)
	assert.Equal(t, "Watch Version", product.Name)
}

func TestResolve_ConsolidatedHit(t *testing.T) {
	id := "consolidated-only"
	clearCatalog(t, id)
	seedConsolidated(t, id, "earring_products", "Diamond Studs", 22000)

	repo := NewProductRepository(testDB)
	product, table, err := repo.Resolve(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "earring_products", table)
	assert.Equal(t, int64(22000), product.Price)
}

func TestResolve_ConsolidatedPrefersEarlierSourceTable(t *testing.T) {
	id := "dup-in-consolidated"
	clearCatalog(t, id)
	seedConsolidated(t, id, "custom_products", "Custom Version", 1)
	seedConsolidated(t, id, "grillz_products", "Grillz Version", 2)

	repo := NewProductRepository(testDB)
	product, table, err := repo.Resolve(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "grillz_products", table)
	assert.Equal(t, "Grillz Version", product.Name)
}

// A row missing from the consolidated mirror still resolves through the
// per-category scan.
func TestResolve_FallsBackToCategoryScan(t *testing.T) {
	id := "unmirrored-product"
	clearCatalog(t, id)
	seedProduct(t, "bracelet_products", id, "Tennis Bracelet", 31000)

	repo := NewProductRepository(testDB)
	product, table, err := repo.Resolve(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "bracelet_products", table)
	assert.Equal(t, "Tennis Bracelet", product.Name)
}

func TestResolve_NotFoundAnywhere(t *testing.T) {
	repo := NewProductRepository(testDB)

	_, _, err := repo.Resolve(context.Background(), "ghost-id")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestProperty_SeededProductsResolveFromAnyCategoryTable(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("a product seeded in any category table resolves with its table and price", prop.ForAll(
		func(idSuffix string, tableIdx int, price int64) bool {
			table := domain.ProductTables[tableIdx%len(domain.ProductTables)]
			id := "prop-" + idSuffix

			clearCatalog(t, id)
			seedProduct(t, table, id, "Prop Product", price)

			product, gotTable, err := repo.Resolve(ctx, id)
			if err != nil {
				t.Logf("resolve failed: %v", err)
				return false
			}
			if gotTable != table || product.Price != price {
				t.Logf("got (%s, %d), want (%s, %d)", gotTable, product.Price, table, price)
				return false
			}

			clearCatalog(t, id)
			return true
		},
		gen.RegexMatch(`[a-z0-9]{6,12}`),
		gen.IntRange(0, len(domain.ProductTables)-1),
		gen.Int64Range(100, 10000000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
