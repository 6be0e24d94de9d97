package packages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerseo/seodash/internal/pkg/tasktype"
)

func TestCatalogTotals(t *testing.T) {
	tests := []struct {
		pkg   Type
		total int
		pages int
		blogs int
		gbp   int
	}{
		{Silver, 24, 3, 4, 8},
		{Gold, 42, 6, 8, 16},
		{Platinum, 61, 9, 12, 20},
	}

	for _, tt := range tests {
		t.Run(string(tt.pkg), func(t *testing.T) {
			p, err := Lookup(tt.pkg)
			require.NoError(t, err)
			assert.Equal(t, tt.total, p.TotalTasks)
			assert.Equal(t, tt.pages, p.Breakdown.Pages)
			assert.Equal(t, tt.blogs, p.Breakdown.Blogs)
			assert.Equal(t, tt.gbp, p.Breakdown.GBPPosts)
			assert.Equal(t, p.TotalTasks, p.Breakdown.Sum(), "improvements make up the rest of the total")
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup(Type("BRONZE"))
	assert.ErrorIs(t, err, ErrUnknownPackage)
}

func TestLookupReturnsCopy(t *testing.T) {
	p, err := Lookup(Gold)
	require.NoError(t, err)
	p.Breakdown.Pages = 1000

	again, err := Lookup(Gold)
	require.NoError(t, err)
	assert.Equal(t, 6, again.Breakdown.Pages)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "gold", want: Gold},
		{in: " Platinum ", want: Platinum},
		{in: "SILVER", want: Silver},
		{in: "", wantErr: true},
		{in: "diamond", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, Silver, ParseOrDefault("nope"))
	assert.Equal(t, Gold, ParseOrDefault("gold"))
}

func TestBreakdownOf(t *testing.T) {
	p, _ := Lookup(Platinum)
	assert.Equal(t, 9, p.Breakdown.Of(tasktype.CounterPages))
	assert.Equal(t, 12, p.Breakdown.Of(tasktype.CounterBlogs))
	assert.Equal(t, 20, p.Breakdown.Of(tasktype.CounterGBPPosts))
	assert.Equal(t, 20, p.Breakdown.Of(tasktype.CounterImprovements))
	assert.Equal(t, 0, p.Breakdown.Of(tasktype.CounterNone))
}
