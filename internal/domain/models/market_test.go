package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicatorRow_MarshalsWarmupNaNAsNull(t *testing.T) {
	row := IndicatorRow{
		InstrumentID: "bitcoin",
		Date:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		SMA7:         101.25,
		SMA30:        math.NaN(),
		RSI14:        math.NaN(),
		MACD:         -0.4,
	}

	b, err := json.Marshal(row)
	require.NoError(t, err)

	body := string(b)
	assert.Contains(t, body, `"sma_7":101.25`)
	assert.Contains(t, body, `"sma_30":null`)
	assert.Contains(t, body, `"rsi_14":null`)
	assert.False(t, strings.Contains(body, "NaN"))

	var back IndicatorRow
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, row.InstrumentID, back.InstrumentID)
	assert.InDelta(t, 101.25, back.SMA7, 1e-9)
	assert.InDelta(t, -0.4, back.MACD, 1e-9)
	assert.True(t, math.IsNaN(back.SMA30))
	assert.True(t, math.IsNaN(back.RSI14))
}

func TestIndicatorRow_SliceMarshalsWithWarmupRows(t *testing.T) {
	rows := []IndicatorRow{
		{InstrumentID: "bitcoin", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), SMA7: math.NaN()},
		{InstrumentID: "bitcoin", Date: time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), SMA7: 103},
	}

	_, err := json.Marshal(rows)
	require.NoError(t, err)
}
