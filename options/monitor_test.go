package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/insightslog/core"
)

func TestDefault(t *testing.T) {
	o := Default()
	assert.True(t, o.IncludeCategoryName)
	assert.True(t, o.IncludeScopes)
	assert.Nil(t, o.Enrich)
}

func TestMonitor_SetNotifiesSubscribers(t *testing.T) {
	m := NewMonitor(Default())

	var got []Options
	unsubscribe := m.OnChange(func(o Options) { got = append(got, o) })
	require.Equal(t, 1, m.Subscribers())

	m.Set(Options{IncludeScopes: false, IncludeCategoryName: true})
	m.Update(func(o *Options) { o.IncludeCategoryName = false })

	require.Len(t, got, 2)
	assert.False(t, got[0].IncludeScopes)
	assert.True(t, got[0].IncludeCategoryName)
	assert.False(t, got[1].IncludeCategoryName)
	assert.Equal(t, got[1].IncludeCategoryName, m.Current().IncludeCategoryName)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, m.Subscribers())

	m.Set(Default())
	assert.Len(t, got, 2)
}

func TestMonitor_UnsubscribeKeepsOthers(t *testing.T) {
	m := NewMonitor(Default())

	var a, b int
	stopA := m.OnChange(func(Options) { a++ })
	m.OnChange(func(Options) { b++ })

	stopA()
	m.Set(Default())

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

func TestMonitor_CurrentCarriesEnrich(t *testing.T) {
	called := false
	m := NewMonitor(Options{Enrich: func(*core.PropertyBag) { called = true }})

	m.Current().Enrich(core.NewPropertyBag(0))
	assert.True(t, called)
}
