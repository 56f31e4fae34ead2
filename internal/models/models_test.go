package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceBar_Validate(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		bar     PriceBar
		wantErr error
	}{
		{
			name: "valid bar",
			bar:  PriceBar{Date: day, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 1000},
		},
		{
			name: "zero volume is allowed",
			bar:  PriceBar{Date: day, Open: 10, High: 10, Low: 10, Close: 10, Volume: 0},
		},
		{
			name:    "zero date",
			bar:     PriceBar{Open: 10, High: 11, Low: 9, Close: 10},
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "negative close",
			bar:     PriceBar{Date: day, Open: 10, High: 11, Low: 9, Close: -1},
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "NaN open",
			bar:     PriceBar{Date: day, Open: math.NaN(), High: 11, Low: 9, Close: 10},
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "high below low",
			bar:     PriceBar{Date: day, Open: 10, High: 9, Low: 11, Close: 10},
			wantErr: ErrInvalidBar,
		},
		{
			name:    "negative volume",
			bar:     PriceBar{Date: day, Open: 10, High: 11, Low: 9, Close: 10, Volume: -5},
			wantErr: ErrInvalidVolume,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bar.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestValue_SomeRejectsNonFinite(t *testing.T) {
	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)
	assert.True(t, Some(0).Valid)

	v, ok := Some(42.5).Get()
	assert.True(t, ok)
	assert.Equal(t, 42.5, v)

	assert.True(t, math.IsNaN(Undefined().OrNaN()))
	assert.Equal(t, "NaN", Undefined().String())
	assert.Equal(t, "1.5", Some(1.5).String())
}

func TestValue_JSON(t *testing.T) {
	data, err := json.Marshal([]Value{Some(1.25), Undefined()})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.25, null]`, string(data))

	var decoded []Value
	require.NoError(t, json.Unmarshal([]byte(`[null, 3, 4.5]`), &decoded))
	assert.Equal(t, []Value{Undefined(), Some(3), Some(4.5)}, decoded)
}

func TestSeries_Helpers(t *testing.T) {
	s := Series{Undefined(), Undefined(), Some(2), Some(3)}

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 2, s.DefinedCount())
	assert.Equal(t, 2, s.FirstDefined())
	assert.Equal(t, Some(3), s.Last())
	assert.False(t, s.At(10).Valid)
	assert.False(t, s.At(-1).Valid)

	floats := s.Floats()
	assert.True(t, math.IsNaN(floats[0]))
	assert.Equal(t, 3.0, floats[3])

	assert.True(t, s.Equal(Series{Undefined(), Undefined(), Some(2), Some(3)}))
	assert.False(t, s.Equal(Series{Undefined(), Some(0), Some(2), Some(3)}))
	assert.False(t, s.Equal(s[:3]))

	assert.Equal(t, -1, NewSeries(3).FirstDefined())
	assert.Equal(t, 2, SeriesOf(1, math.NaN(), 3).DefinedCount())
}

func TestFrame_Column(t *testing.T) {
	bars := []PriceBar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 2, High: 2, Low: 2, Close: 2},
	}
	f := &Frame{
		Bars: bars,
		Indicators: IndicatorSet{
			"MA5":   Series{Undefined(), Some(1.5)},
			"Short": Series{Some(1)},
		},
	}

	s, err := f.Column("MA5")
	require.NoError(t, err)
	assert.Equal(t, Some(1.5), s[1])

	_, err = f.Column("RSI")
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = f.Column("Short")
	assert.ErrorIs(t, err, ErrMisalignedColumn)

	assert.Equal(t, Some(1.5), f.Latest("MA5"))
	assert.False(t, f.Latest("RSI").Valid)

	rows := f.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, 2.0, rows[1].Close)
	assert.Equal(t, Some(1.5), rows[1].Indicators["MA5"])
	assert.Equal(t, SeriesOf(1, 2), f.CloseSeries())
}

func TestStaticAttributes_YearsListed(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a := StaticAttributes{ListDate: time.Date(2012, 12, 31, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 12, a.YearsListed(asOf))

	var unknown StaticAttributes
	assert.Equal(t, 0, unknown.YearsListed(asOf))

	future := StaticAttributes{ListDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 0, future.YearsListed(asOf))

	assert.True(t, (&StaticAttributes{Name: "*ST Foo"}).IsSpecialTreatment())
	assert.False(t, (&StaticAttributes{Name: "Ping An Bank"}).IsSpecialTreatment())
}

func TestSignalSet(t *testing.T) {
	s := SignalSet{
		"B": {false, true, true},
		"A": {true, false, true},
	}
	assert.Equal(t, []string{"A", "B"}, s.Names())
	assert.Equal(t, 2, s.Count("A"))
	assert.Equal(t, 0, s.Count("missing"))
	assert.Equal(t, map[string]int{"A": 2, "B": 2}, s.Counts())
	assert.Equal(t, []string{"A", "B"}, s.Active(2))
	assert.Equal(t, []string{"B"}, s.Active(1))
	assert.Empty(t, s.Active(5))
}
