package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

func TestQueryTabs_NewTabTitles(t *testing.T) {
	qt := NewQueryTabs(theme.DefaultTheme())
	require.Equal(t, 1, qt.Len())
	assert.Equal(t, "SQLQuery_1", qt.Active().Title)

	idx := qt.NewTab("SELECT 1")
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, qt.ActiveIndex())
	assert.Equal(t, "SQLQuery_2", qt.Active().Title)
	assert.Equal(t, "SELECT 1", qt.Active().Buffer.GatherText())

	qt.CloseActive()
	qt.NewTab("")
	assert.Equal(t, "SQLQuery_3", qt.Active().Title, "numbers are never reused")
}

func TestQueryTabs_CloseLastTabClearsInPlace(t *testing.T) {
	qt := NewQueryTabs(theme.DefaultTheme())
	tab := qt.Active()
	tab.Buffer.SetText("SELECT 1")
	tab.SetResult(models.NewAffectedResult(3))
	tab.ScrollRow = 4

	qt.CloseActive()

	require.Equal(t, 1, qt.Len())
	assert.Same(t, tab, qt.Active())
	assert.Equal(t, "", tab.Buffer.GatherText())
	assert.Nil(t, tab.Result)
	assert.Equal(t, 0, tab.ScrollRow)
}

func TestQueryTabs_CloseActivatesNearest(t *testing.T) {
	tests := []struct {
		name      string
		tabs      int
		active    int
		wantIndex int
		wantTitle string
	}{
		{"middle", 3, 1, 1, "SQLQuery_3"},
		{"last", 3, 2, 1, "SQLQuery_2"},
		{"first", 3, 0, 0, "SQLQuery_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qt := NewQueryTabs(theme.DefaultTheme())
			for i := 1; i < tt.tabs; i++ {
				qt.NewTab("")
			}
			for qt.ActiveIndex() != tt.active {
				qt.Next()
			}

			qt.CloseActive()
			assert.Equal(t, tt.tabs-1, qt.Len())
			assert.Equal(t, tt.wantIndex, qt.ActiveIndex())
			assert.Equal(t, tt.wantTitle, qt.Active().Title)
		})
	}
}

func TestQueryTabs_NextPreviousRoundTrip(t *testing.T) {
	for n := 1; n <= 4; n++ {
		qt := NewQueryTabs(theme.DefaultTheme())
		for i := 1; i < n; i++ {
			qt.NewTab("")
		}
		for start := 0; start < n; start++ {
			for qt.ActiveIndex() != start {
				qt.Next()
			}
			qt.Next()
			qt.Previous()
			assert.Equal(t, start, qt.ActiveIndex())
		}
	}
}

func TestQueryTabs_NextWraps(t *testing.T) {
	qt := NewQueryTabs(theme.DefaultTheme())
	qt.NewTab("")

	qt.Next()
	assert.Equal(t, 0, qt.ActiveIndex())
	qt.Previous()
	assert.Equal(t, 1, qt.ActiveIndex())
}

func TestQueryTabs_RenderTabBarKeepsActiveVisible(t *testing.T) {
	qt := NewQueryTabs(theme.DefaultTheme())
	for i := 0; i < 9; i++ {
		qt.NewTab("")
	}

	bar := qt.RenderTabBar(40)
	assert.Contains(t, bar, "SQLQuery_10")
	assert.NotContains(t, bar, "SQLQuery_1 ")
}
