package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignFitted_EqualLength(t *testing.T) {
	out := alignFitted([]float64{10, 20, 30}, []float64{11, 19, 31})

	assert.Equal(t, []float64{11, 19, 31}, out)
}

func TestAlignFitted_DifferencedFit(t *testing.T) {
	// A first-order difference drops one leading observation; the
	// uncovered prefix keeps the observed value.
	out := alignFitted([]float64{10, 20, 30, 40}, []float64{21, 29, 41})

	assert.Equal(t, []float64{10, 21, 29, 41}, out)
}

func TestAlignFitted_FittedLongerThanSeries(t *testing.T) {
	out := alignFitted([]float64{10, 20}, []float64{9, 19, 21})

	assert.Equal(t, []float64{19, 21}, out)
}
