package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eduwrench/simclient/internal/testutil"
)

func TestSummarize_NilResult_ReturnsZeroSummary(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.TotalTasks)
	assert.NotNil(t, s.TypeCounts)
	assert.Empty(t, s.Types())
}

func TestSummarize_Montage(t *testing.T) {
	s := Summarize(Compose(testutil.LoadResponse(t, "montage")))

	assert.Equal(t, 5, s.TotalTasks)
	assert.Equal(t, 2, s.Hosts)
	assert.Equal(t, 10.0, s.Makespan)
	assert.Equal(t, map[string]int{"compute": 4, "io": 1}, s.TypeCounts)
	assert.Equal(t, []string{"compute", "io"}, s.Types())
	assert.Equal(t, "local_0", s.BusiestHost)
}
