package traffic

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradient_ColorAt(t *testing.T) {
	g := DefaultGradient()

	tests := []struct {
		name  string
		ratio float64
		want  string
	}{
		{"below first stop clamps", 0.5, "#2ECC71"},
		{"first stop", 1.0, "#2ECC71"},
		{"between green and yellow", 1.125, "#90C840"},
		{"exact inner stop", 1.25, "#F1C40F"},
		{"between orange and red", 1.75, "#E7652F"},
		{"last stop", 2.0, "#E74C3C"},
		{"above last stop clamps", 5.0, "#E74C3C"},
		{"nan is no data", math.NaN(), "#9E9E9E"},
		{"inf is no data", math.Inf(1), "#9E9E9E"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.ColorAt(tt.ratio))
		})
	}
}

func TestNewGradient_SortsAndValidates(t *testing.T) {
	black, white := RGB{}, RGB{R: 255, G: 255, B: 255}

	g, err := NewGradient([]ColorStop{{Ratio: 2, Color: white}, {Ratio: 0, Color: black}}, black)
	require.NoError(t, err)
	assert.Equal(t, "#808080", g.ColorAt(1))
	assert.Equal(t, 0.0, g.Stops()[0].Ratio)

	_, err = NewGradient([]ColorStop{{Ratio: 1, Color: black}}, black)
	assert.Error(t, err)

	_, err = NewGradient([]ColorStop{{Ratio: 1, Color: black}, {Ratio: 1, Color: white}}, black)
	assert.Error(t, err)

	_, err = NewGradient([]ColorStop{{Ratio: math.NaN(), Color: black}, {Ratio: 1, Color: white}}, black)
	assert.Error(t, err)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#2ecc71")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 0x2E, G: 0xCC, B: 0x71}, c)
	assert.Equal(t, "#2ECC71", c.Hex())

	c, err = ParseHex("FFFFFF")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 255, G: 255, B: 255}, c)

	for _, in := range []string{"", "#FFF", "#GGGGGG", "#1234567"} {
		_, err := ParseHex(in)
		assert.Error(t, err, in)
	}
}

func TestMix_ClampsT(t *testing.T) {
	a, b := RGB{R: 0}, RGB{R: 200}
	assert.Equal(t, a, Mix(a, b, -1))
	assert.Equal(t, b, Mix(a, b, 3))
	assert.Equal(t, RGB{R: 50}, Mix(a, b, 0.25))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelFree, LevelFor(1.0))
	assert.Equal(t, LevelLight, LevelFor(1.1))
	assert.Equal(t, LevelModerate, LevelFor(1.3))
	assert.Equal(t, LevelHeavy, LevelFor(1.99))
	assert.Equal(t, LevelSevere, LevelFor(2.0))
	assert.Equal(t, LevelUnknown, LevelFor(math.NaN()))
	assert.Equal(t, LevelUnknown, LevelFor(-1))
}

func TestRatio(t *testing.T) {
	r := Ratio(150, 100)
	require.NotNil(t, r)
	assert.InDelta(t, 1.5, *r, 1e-12)

	assert.Nil(t, Ratio(100, 0))
	assert.Nil(t, Ratio(100, -5))
	assert.Nil(t, Ratio(math.NaN(), 100))
	assert.Nil(t, Ratio(-1, 100))
}

func TestNewImpact(t *testing.T) {
	g := DefaultGradient()

	none := NewImpact(nil, g)
	assert.Nil(t, none.Ratio)
	assert.Equal(t, "#9E9E9E", none.Color)
	assert.Equal(t, LevelUnknown, none.Level)

	r := 1.25
	imp := NewImpact(&r, g)
	assert.Equal(t, "#F1C40F", imp.Color)
	assert.Equal(t, LevelModerate, imp.Level)
}

func TestLegend_JSON(t *testing.T) {
	legend := DefaultGradient().Legend()
	require.Len(t, legend, 4)
	assert.Equal(t, LevelFree, legend[0].Level)
	assert.Equal(t, LevelSevere, legend[3].Level)

	raw, err := json.Marshal(DefaultGradient().Stops()[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"ratio":1,"color":"#2ECC71"}`, string(raw))
}
