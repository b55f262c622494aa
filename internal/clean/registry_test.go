package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AllNames(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{
		"email_campaigns", "paid_ads", "social_media_organic", "customer_transactions", "customer_master",
	}, r.AllNames())
	assert.Len(t, r.All(), 5)
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	d, err := r.Get("paid_ads")
	require.NoError(t, err)
	assert.Equal(t, "clean_paid_ads", d.Table().Name)

	_, err = r.Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown dataset "nope"`)
}

func TestRegistry_Select(t *testing.T) {
	r := NewRegistry()

	all, err := r.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	some, err := r.Select([]string{"customer_master", "paid_ads", "customer_master"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "customer_master", some[0].Name())
	assert.Equal(t, "paid_ads", some[1].Name())

	_, err = r.Select([]string{"paid_ads", "bogus"})
	assert.Error(t, err)
}

func TestRegistry_StagingSpecs(t *testing.T) {
	specs := NewRegistry().StagingSpecs()
	require.Len(t, specs, 5)
	for _, s := range specs {
		assert.Contains(t, s.Table, "staging_")
		assert.NotEmpty(t, s.Columns)
	}
}

func TestDatasets_Consistent(t *testing.T) {
	for _, d := range NewRegistry().All() {
		t.Run(d.Name(), func(t *testing.T) {
			table := d.Table()
			profile := d.Profile()
			assert.Equal(t, table.Name, profile.Table)

			cols := table.ColumnNames()
			assert.Contains(t, cols, profile.Key)
			if profile.DateColumn != "" {
				assert.Contains(t, cols, profile.DateColumn)
			}
			for _, c := range profile.NullColumns {
				assert.Contains(t, cols, c)
			}
			for _, idx := range table.Indexes {
				assert.Contains(t, cols, idx)
			}
			assert.True(t, table.Columns[0].NotNull, "key column must be NOT NULL")

			res, err := d.Clean(nil, Options{AsOf: asOf})
			require.NoError(t, err)
			assert.Empty(t, res.Rows)
		})
	}
}
