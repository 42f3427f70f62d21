package report

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/assist-by/compass/internal/analysis"
	"github.com/assist-by/compass/internal/domain"
	"github.com/assist-by/compass/internal/market"
)

func sampleSnapshot() *market.Snapshot {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &market.Snapshot{
		ID:        "3f1c2a9e-0000-4000-8000-000000000001",
		Symbol:    "ETHUSDT",
		Interval:  domain.Interval1d,
		FetchedAt: at,
		Price:     3245.1234,
		Candles:   500,
		Reports: []*analysis.Report{
			{
				Indicator: "ichimoku",
				Time:      at,
				Price:     3245.1234,
				Values: map[string]float64{
					"tenkan":  3210.5,
					"cloud_b": math.NaN(),
				},
				Classifications: []analysis.Classification{
					{Rule: "price_vs_cloud", Label: analysis.Bullish, Evidence: "price $3245.12 > cloud top $3100.00"},
					{Rule: "tk_cross", Label: analysis.Bearish, Evidence: "tenkan $3210.50 < kijun $3300.00"},
				},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"text": FormatText, " JSON ": FormatJSON, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234,567.89", FormatNumber(1234567.891))
	assert.Equal(t, "50", FormatNumber(50))
	assert.Equal(t, "-0.46", FormatNumber(-0.456))
	assert.Equal(t, "n/a", FormatNumber(math.NaN()))
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextRenderer{}).Render(&buf, []*market.Snapshot{sampleSnapshot()}))

	out := buf.String()
	assert.Contains(t, out, "ETHUSDT 1d  price $3,245.12")
	assert.Contains(t, out, "== ICHIMOKU ==")
	assert.Regexp(t, `cloud_b\s+n/a`, out)
	assert.Regexp(t, `tenkan\s+3,210.5`, out)
	assert.Regexp(t, `price_vs_cloud\s+BULLISH\s+price \$3245.12 > cloud top`, out)
	assert.NotContains(t, out, "\x1b[")
}

func TestTextRendererColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextRenderer{Color: true}).Render(&buf, []*market.Snapshot{sampleSnapshot()}))

	out := buf.String()
	assert.Contains(t, out, ansiGreen+"BULLISH")
	assert.Contains(t, out, ansiRed+"BEARISH")
}

func TestJSONRendererUndefinedAsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONRenderer{}).Render(&buf, []*market.Snapshot{sampleSnapshot()}))

	var decoded []struct {
		Symbol     string `json:"symbol"`
		Interval   string `json:"interval"`
		Indicators []struct {
			Values          map[string]*float64 `json:"values"`
			Classifications []struct {
				Label string `json:"label"`
			} `json:"classifications"`
		} `json:"indicators"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "1d", decoded[0].Interval)

	values := decoded[0].Indicators[0].Values
	require.Contains(t, values, "cloud_b")
	assert.Nil(t, values["cloud_b"])
	require.NotNil(t, values["tenkan"])
	assert.Equal(t, 3210.5, *values["tenkan"])
	assert.Equal(t, "BULLISH", decoded[0].Indicators[0].Classifications[0].Label)
}

func TestYAMLRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAMLRenderer{}.Render(&buf, []*market.Snapshot{sampleSnapshot()}))

	var decoded []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "ETHUSDT", decoded[0]["symbol"])

	indicators := decoded[0]["indicators"].([]interface{})
	values := indicators[0].(map[string]interface{})["values"].(map[string]interface{})
	assert.Nil(t, values["cloud_b"])
	assert.Equal(t, 3210.5, values["tenkan"])
}

func TestNewRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRenderer(FormatText, &buf)
	require.NoError(t, err)
	assert.False(t, r.(*TextRenderer).Color)

	_, err = NewRenderer(Format("xml"), &buf)
	assert.Error(t, err)
}
