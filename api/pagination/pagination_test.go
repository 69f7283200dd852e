package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		limit int
		want  int
	}{
		{limit: 0, want: defaultLimit},
		{limit: 5, want: 5},
		{limit: maxLimit + 1, want: maxLimit},
	}
	for _, c := range testCases {
		q := &Query{Limit: c.limit}
		q.Normalize()
		assert.Equal(t, c.want, q.Limit)
	}
}
