package netif

import (
	"errors"
	"syscall"
	"testing"

	"github.com/irctrakz/systatd/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_TxBytesMatch(t *testing.T) {
	enum := NewMockEnumerator(
		LinkRecord("lo", 1, 42, 42),
		LinkRecord("eth0", 2, 123456, 999),
	)
	r := NewResolver(enum)

	v, err := r.TxBytes("eth0")
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), v)
	assert.Equal(t, uint64(1), enum.Calls())
}

func TestResolver_RxBytes(t *testing.T) {
	r := NewResolver(NewMockEnumerator(LinkRecord("eth0", 2, 1, 777)))

	v, err := r.Lookup(core.InterfaceQuery{Name: "eth0", Metric: core.MetricRxBytes})
	require.NoError(t, err)
	assert.Equal(t, uint64(777), v)
}

func TestResolver_NotFoundIsDeterministic(t *testing.T) {
	enum := NewMockEnumerator(LinkRecord("eth0", 2, 1, 1))
	r := NewResolver(enum)

	for i := 0; i < 3; i++ {
		_, err := r.TxBytes("ghost0")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Contains(t, err.Error(), "ghost0")
	}
	assert.Equal(t, uint64(3), enum.Calls(), "each lookup must enumerate afresh")
}

func TestResolver_CaseSensitive(t *testing.T) {
	r := NewResolver(NewMockEnumerator(LinkRecord("eth0", 2, 5, 5)))

	_, err := r.TxBytes("ETH0")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = r.TxBytes("eth")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResolver_SkipsNonLinkAndMissingStats(t *testing.T) {
	enum := NewMockEnumerator(
		core.InterfaceRecord{Name: "eth0", Index: 2, Family: core.FamilyOther},
		core.InterfaceRecord{Name: "eth0", Index: 2, Family: core.FamilyLinkLayer},
		LinkRecord("eth0", 2, 31337, 0),
	)
	r := NewResolver(enum)

	v, err := r.TxBytes("eth0")
	require.NoError(t, err)
	assert.Equal(t, uint64(31337), v)

	enum.SetRecords(core.InterfaceRecord{Name: "eth0", Family: core.FamilyOther, Stats: &core.LinkStats{TxBytes: 9}})
	_, err = r.TxBytes("eth0")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResolver_FirstMatchWins(t *testing.T) {
	r := NewResolver(NewMockEnumerator(
		LinkRecord("dup0", 3, 100, 0),
		LinkRecord("dup0", 4, 200, 0),
	))

	v, err := r.TxBytes("dup0")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), v)
}

func TestResolver_EnumerationError(t *testing.T) {
	enum := NewMockEnumerator()
	enum.SetError(&core.EnumerationError{Op: "socket", Err: syscall.EMFILE})
	r := NewResolver(enum)

	_, err := r.TxBytes("eth0")
	var ee *core.EnumerationError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, syscall.EMFILE, ee.Errno())
	assert.False(t, errors.Is(err, core.ErrNotFound))
}

func TestResolver_WrapsPlainEnumeratorErrors(t *testing.T) {
	enum := NewMockEnumerator()
	enum.SetError(errors.New("table unavailable"))
	r := NewResolver(enum)

	_, err := r.TxBytes("eth0")
	var ee *core.EnumerationError
	require.True(t, errors.As(err, &ee))
	assert.Contains(t, err.Error(), "table unavailable")
}

func TestResolver_NonDecreasingAcrossCalls(t *testing.T) {
	enum := NewMockEnumerator(LinkRecord("eth0", 2, 1000, 0))
	r := NewResolver(enum)

	first, err := r.TxBytes("eth0")
	require.NoError(t, err)
	second, err := r.TxBytes("eth0")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	enum.AddTxBytes("eth0", 64)
	third, err := r.TxBytes("eth0")
	require.NoError(t, err)
	assert.Equal(t, first+64, third)
}

func TestMockEnumerator_ReturnsCopies(t *testing.T) {
	enum := NewMockEnumerator(LinkRecord("eth0", 2, 10, 0))
	recs, err := enum.Enumerate()
	require.NoError(t, err)
	recs[0].Stats.TxBytes = 0

	again, err := enum.Enumerate()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), again[0].Stats.TxBytes)
}
