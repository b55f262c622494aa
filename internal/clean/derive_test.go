package clean

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestPct(t *testing.T) {
	assert.Equal(t, 33.33, pct(1, i64(3)))
	assert.Equal(t, 66.67, pct(2, i64(3)))
	assert.Equal(t, 0.0, pct(5, i64(0)))
	assert.Equal(t, 0.0, pct(5, nil))
	assert.Equal(t, 0.0, pctOf(nil, i64(10)))
	assert.Equal(t, 12.5, pctOf(i64(1), i64(8)))
}

func TestPerUnit(t *testing.T) {
	decEq(t, "0.3333", perUnit(dec("1"), i64(3), 4))
	decEq(t, "0", perUnit(dec("1"), i64(0), 4))
	decEq(t, "0", perUnit(nil, i64(3), 4))
	decEq(t, "0", perUnit(dec("1"), nil, 4))
}

func TestRoasAndRoi(t *testing.T) {
	assert.Equal(t, 2.5, roas(dec("250"), dec("100")))
	assert.Equal(t, 150.0, roiPct(dec("250"), dec("100")))
	assert.Equal(t, -50.0, roiPct(dec("50"), dec("100")))
	assert.Equal(t, 0.0, roas(dec("50"), dec("0")))
	assert.Equal(t, 0.0, roiPct(nil, dec("10")))
}

func TestClamp(t *testing.T) {
	v := i64(12)
	assert.True(t, clamp(v, i64(10)))
	assert.Equal(t, int64(10), *v)
	assert.False(t, clamp(v, i64(10)))
	assert.False(t, clamp(v, nil))
	assert.False(t, clamp(nil, i64(1)))
}

func TestWholeYears(t *testing.T) {
	assert.Equal(t, int64(3), wholeYears(day(2020, 7, 1), asOf))
	assert.Equal(t, int64(4), wholeYears(day(2020, 6, 30), asOf))
	assert.Equal(t, int64(3), wholeYears(day(2020, 2, 29), day(2024, 2, 28)))
	assert.Equal(t, int64(4), wholeYears(day(2020, 2, 29), day(2024, 2, 29)))
	assert.Equal(t, int64(-1), wholeYears(day(2025, 1, 1), asOf))
}

func TestCell(t *testing.T) {
	assert.Nil(t, cell[int64](nil))
	assert.Equal(t, int64(7), cell(i64(7)))
}

func TestCol(t *testing.T) {
	row := []string{"a", "b"}
	assert.Equal(t, "b", col(row, 1))
	assert.Equal(t, "", col(row, 2))
}
