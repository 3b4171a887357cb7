package reconciliation

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selRow(key, rfc, diferencia string) Row {
	return Row{Key: key, RFC: rfc, Diferencia: dec(diferencia)}
}

func fixtureRows() []Row {
	return []Row{
		selRow("1", "AAA010101AAA", "100"),
		selRow("2", "AAA010101AAA", "50"),
		selRow("3", "BBB010101BBB", "70"),
		selRow("4", "AAA010101AAA", "0"),
		selRow("5", "", "10"),
		selRow("6", "", "20"),
	}
}

func TestSelection_Select(t *testing.T) {
	s := NewSelection(fixtureRows())
	assert.Equal(t, SelectionEmpty, s.State())

	require.NoError(t, s.Select("1"))
	assert.Equal(t, SelectionSingleRFC, s.State())
	rfc, ok := s.Baseline()
	assert.True(t, ok)
	assert.Equal(t, "AAA010101AAA", rfc)

	require.NoError(t, s.Select("2"))
	require.NoError(t, s.Select("2"), "selecting twice is a no-op")
	assert.Equal(t, 2, s.Len())

	err := s.Select("3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRFCConflict))
	var conflict *RFCConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "BBB010101BBB", conflict.RFC)
	assert.Equal(t, "AAA010101AAA", conflict.Baseline)
	assert.Equal(t, []string{"1", "2"}, s.Keys(), "rejected selection leaves state unchanged")

	assert.ErrorIs(t, s.Select("4"), ErrNotSelectable)
	assert.ErrorIs(t, s.Select("99"), ErrUnknownRow)
	assert.ErrorIs(t, s.Select("5"), ErrRFCConflict, "rows without RFC do not mix with RFC rows")
}

func TestSelection_EmptyRFCIsItsOwnGroup(t *testing.T) {
	s := NewSelection(fixtureRows())

	require.NoError(t, s.Select("5"))
	require.NoError(t, s.Select("6"))
	rfc, ok := s.Baseline()
	assert.True(t, ok)
	assert.Equal(t, "", rfc)

	assert.ErrorIs(t, s.Select("1"), ErrRFCConflict)
}

func TestSelection_DeselectClearsBaseline(t *testing.T) {
	s := NewSelection(fixtureRows())

	require.NoError(t, s.Select("1"))
	s.Deselect("1")
	assert.Equal(t, SelectionEmpty, s.State())
	_, ok := s.Baseline()
	assert.False(t, ok)

	require.NoError(t, s.Select("3"), "a new baseline can be chosen once empty")
	rfc, _ := s.Baseline()
	assert.Equal(t, "BBB010101BBB", rfc)

	s.Deselect("not-there")
	assert.Equal(t, 1, s.Len())
}

func TestSelection_Toggle(t *testing.T) {
	s := NewSelection(fixtureRows())

	require.NoError(t, s.Toggle("1"))
	assert.True(t, s.IsSelected("1"))
	require.NoError(t, s.Toggle("1"))
	assert.False(t, s.IsSelected("1"))
	assert.Equal(t, SelectionEmpty, s.State())
}

func TestSelection_SelectAllFiltered(t *testing.T) {
	t.Run("baseline from first RFC in filtered set", func(t *testing.T) {
		s := NewSelection(fixtureRows())
		rows := []Row{fixtureRows()[4], fixtureRows()[2], fixtureRows()[0], fixtureRows()[3]}

		added := s.SelectAllFiltered(rows)
		assert.Equal(t, 1, added)
		assert.Equal(t, []string{"3"}, s.Keys())
	})

	t.Run("baseline from current selection", func(t *testing.T) {
		s := NewSelection(fixtureRows())
		require.NoError(t, s.Select("2"))

		added := s.SelectAllFiltered(fixtureRows())
		assert.Equal(t, 1, added)
		assert.Equal(t, []string{"1", "2"}, s.Keys(), "fully invoiced row 4 is skipped")
	})

	t.Run("only RFC-less rows", func(t *testing.T) {
		s := NewSelection(fixtureRows())
		added := s.SelectAllFiltered([]Row{fixtureRows()[4], fixtureRows()[5]})
		assert.Equal(t, 2, added)
		rfc, ok := s.Baseline()
		assert.True(t, ok)
		assert.Equal(t, "", rfc)
	})

	t.Run("nothing selectable", func(t *testing.T) {
		s := NewSelection(fixtureRows())
		assert.Equal(t, 0, s.SelectAllFiltered([]Row{fixtureRows()[3]}))
		assert.Equal(t, SelectionEmpty, s.State())
	})
}

func TestSelection_Refresh(t *testing.T) {
	s := NewSelection(fixtureRows())
	require.NoError(t, s.Select("1"))
	require.NoError(t, s.Select("2"))

	reloaded := fixtureRows()
	reloaded[0].Diferencia = dec("0") // row 1 got fully invoiced meanwhile
	s.Refresh(reloaded)

	assert.Equal(t, []string{"2"}, s.Keys())

	s.Refresh(fixtureRows()[2:])
	assert.Equal(t, SelectionEmpty, s.State())
	_, ok := s.Baseline()
	assert.False(t, ok)
}

func TestSelection_Clear(t *testing.T) {
	s := NewSelection(fixtureRows())
	require.NoError(t, s.Select("1"))
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, SelectionEmpty, s.State())
}

func TestSelection_KeysOrder(t *testing.T) {
	s := NewSelection([]Row{selRow("10", "X", "1"), selRow("2", "X", "1"), selRow("b", "X", "1"), selRow("a", "X", "1")})
	for _, k := range []string{"b", "10", "a", "2"} {
		require.NoError(t, s.Select(k))
	}
	assert.Equal(t, []string{"2", "10", "a", "b"}, s.Keys())
	assert.Len(t, s.Rows(), 4)
}

func TestSelection_NeverMixesRFCs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rfcs := []string{"AAA010101AAA", "BBB010101BBB", "CCC010101CCC", ""}

	var rows []Row
	for i := 0; i < 40; i++ {
		diferencia := "10"
		if i%7 == 0 {
			diferencia = "0"
		}
		rows = append(rows, selRow(string(rune('A'+i%26))+string(rune('a'+i/26)), rfcs[rng.Intn(len(rfcs))], diferencia))
	}
	s := NewSelection(rows)

	for step := 0; step < 2000; step++ {
		row := rows[rng.Intn(len(rows))]
		switch rng.Intn(4) {
		case 0, 1:
			_ = s.Select(row.Key)
		case 2:
			s.Deselect(row.Key)
		case 3:
			s.SelectAllFiltered(rows[rng.Intn(len(rows)):])
		}

		seen := map[string]bool{}
		for _, r := range s.Rows() {
			seen[r.RFC] = true
			assert.True(t, r.Selectable())
		}
		require.LessOrEqual(t, len(seen), 1, "step %d mixed RFCs: %v", step, seen)
		if baseline, ok := s.Baseline(); ok {
			assert.True(t, seen[baseline])
		}
	}
}
