package store

import (
	"context"
	"path/filepath"
	"testing"

	"ventas/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Local {
	t.Helper()
	s, err := OpenLocal(filepath.Join(t.TempDir(), "ventas.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func seedProduct(t *testing.T, s *Local, name string, price float64, stock int) *models.Product {
	t.Helper()
	p, err := s.AddProduct(context.Background(), models.AddProductRequest{
		Name:  name,
		SKU:   "SKU-" + name,
		Price: price,
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func countRows(t *testing.T, s *Local, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
