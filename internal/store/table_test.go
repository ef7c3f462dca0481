package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evmap/pkg/contracts/domain"
)

func sampleTable() *Table {
	return NewTable(domain.SourceVehicles, []domain.Record{
		{Region: "PL12", Year: 2020, Value: 10},
		{Region: "DE11", Year: 2019, Value: 4},
		{Region: "PL12", Year: 2018, Value: 7},
		{Region: "PL12", Year: 2020, Value: 99},
	})
}

func TestTable_Value(t *testing.T) {
	table := sampleTable()

	v, ok := table.Value("PL12", 2018)
	require.True(t, ok)
	assert.Equal(t, 7.0, v)

	v, ok = table.Value(" pl12 ", 2018)
	require.True(t, ok, "lookup key is normalized")
	assert.Equal(t, 7.0, v)

	_, ok = table.Value("PL12", 2021)
	assert.False(t, ok)

	_, ok = table.Value("XX00", 2020)
	assert.False(t, ok)
}

func TestTable_DuplicateKeyIsDeterministic(t *testing.T) {
	table := sampleTable()

	for i := 0; i < 10; i++ {
		v, ok := table.Value("PL12", 2020)
		require.True(t, ok)
		assert.Equal(t, 10.0, v, "first row in ingestion order wins")
	}
	assert.Equal(t, 4, table.Len(), "duplicates are not removed")
}

func TestTable_RegionsAndYears(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, []string{"DE11", "PL12"}, table.Regions())
	assert.Equal(t, []int{2018, 2019, 2020}, table.Years())
	assert.True(t, table.HasRegion("de11"))
	assert.False(t, table.HasRegion("FR10"))
	assert.Equal(t, domain.SourceVehicles, table.Source())
}

func TestTable_IsImmutable(t *testing.T) {
	input := []domain.Record{{Region: "PL12", Year: 2020, Value: 1}}
	table := NewTable(domain.SourceVehicles, input)

	input[0].Value = 500
	table.Regions()[0] = "ZZ"
	table.Records()[0].Value = 600

	v, _ := table.Value("PL12", 2020)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, []string{"PL12"}, table.Regions())
}

func TestTable_All(t *testing.T) {
	var regions []string
	for rec := range sampleTable().All() {
		regions = append(regions, rec.Region)
		if len(regions) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"PL12", "DE11"}, regions)
}

func TestTable_Empty(t *testing.T) {
	table := NewTable(domain.SourceEnvironment, nil)

	assert.Empty(t, table.Regions())
	assert.Empty(t, table.Years())
	assert.Zero(t, table.Len())
}
