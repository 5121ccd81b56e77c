package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

func TestService_Consolidate(t *testing.T) {
	cfg := newTestConfig(t)
	writeInput(t, cfg, 2017, taxpayer.CategoryCompany, "sr,name,ntn_7,tax_paid\n1,Acme,1234567,10\n2,Beta,7,20\n")
	writeInput(t, cfg, 2018, taxpayer.CategoryCompany, "sr,name,ntn_7,tax_paid\n1,Acme,1234567,15\n")
	writeInput(t, cfg, 2018, taxpayer.CategoryIndividual, "sr,name,cnic,tax_paid\n1,Ali,3520112345671,5\n")
	engine := newFakeEngine()
	svc := NewService(cfg, engine)

	result, err := svc.Consolidate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.Paths.DataDir, "all.parquet"), result.Path)
	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, "zstd", engine.opts[result.Path].Compression)

	rows := engine.consolidated[result.Path]
	require.Len(t, rows, 4)
	for _, row := range rows {
		if row.Category == taxpayer.CategoryCompany && row.ID == "0000007" {
			require.NotNil(t, row.NTN7)
			assert.Equal(t, "0000007", *row.NTN7)
		}
		if row.Category == taxpayer.CategoryIndividual {
			assert.Equal(t, taxpayer.IDTypeCNIC, row.IDType)
			assert.Nil(t, row.NTN7)
		}
	}

	total := 0
	for _, d := range result.Distribution {
		total += d.Count
	}
	assert.Equal(t, 4, total)
	assert.Len(t, result.Distribution, 3)
}

func TestService_Consolidate_RequiresEngine(t *testing.T) {
	_, err := NewService(newTestConfig(t), nil).Consolidate(context.Background())
	require.Error(t, err)
}
