package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineterm/vitrine/pkg/rerrors"
)

func TestRegisterAssignsMonotonicPerScreenIDs(t *testing.T) {
	r := New()
	h1 := r.Register("main", &DrawObject{})
	h2 := r.Register("main", &DrawObject{})
	h3 := r.Register("other", &DrawObject{})

	assert.Equal(t, Handle{ScreenKey: "main", ObjectID: 0}, h1)
	assert.Equal(t, Handle{ScreenKey: "main", ObjectID: 1}, h2)
	assert.Equal(t, Handle{ScreenKey: "other", ObjectID: 0}, h3)
}

func TestGetMissingHandleReturnsDrawableHandleNotFound(t *testing.T) {
	r := New()
	_, err := r.Get(Handle{ScreenKey: "main", ObjectID: 99})
	require.Error(t, err)
	assert.Equal(t, rerrors.CodeDrawableHandleNotFound, rerrors.GetCode(err))
}

func TestRemoveThenGetFails(t *testing.T) {
	r := New()
	h := r.Register("main", &DrawObject{})
	r.Remove(h)
	_, err := r.Get(h)
	assert.Error(t, err)
}

func TestRemoveUnknownHandleIsNoop(t *testing.T) {
	r := New()
	assert.NotPanics(t, func() {
		r.Remove(Handle{ScreenKey: "ghost", ObjectID: 1})
	})
}

func TestForTimeExpiry(t *testing.T) {
	now := time.Now()
	l := Lifetime{Kind: ForTime, Duration: 5 * time.Second}
	assert.False(t, l.Expired(now, now.Add(4*time.Second)))
	assert.True(t, l.Expired(now, now.Add(6*time.Second)))
}

func TestExpiredFiltersByScreenAndLifetime(t *testing.T) {
	r := New()
	base := time.Now().Add(-time.Hour)
	h1 := r.Register("main", &DrawObject{Lifetime: Lifetime{Kind: ForTime, Duration: time.Minute}, CreationTime: base})
	r.Register("main", &DrawObject{Lifetime: Lifetime{Kind: ExplicitRemove}, CreationTime: base})
	r.Register("other", &DrawObject{Lifetime: Lifetime{Kind: ForTime, Duration: time.Minute}, CreationTime: base})

	expired := r.Expired("main", time.Now())
	require.Len(t, expired, 1)
	assert.Equal(t, h1, expired[0])
}

func TestRemoveNextFrameHandles(t *testing.T) {
	r := New()
	h1 := r.Register("main", &DrawObject{Lifetime: Lifetime{Kind: RemoveNextFrame}})
	r.Register("main", &DrawObject{Lifetime: Lifetime{Kind: ExplicitRemove}})

	handles := r.RemoveNextFrameHandles("main")
	require.Len(t, handles, 1)
	assert.Equal(t, h1, handles[0])
}

func TestTouchCreationTime(t *testing.T) {
	r := New()
	h := r.Register("main", &DrawObject{})
	now := time.Now()
	require.NoError(t, r.TouchCreationTime(h, now))
	obj, err := r.Get(h)
	require.NoError(t, err)
	assert.True(t, obj.CreationTime.Equal(now))
}

func TestLen(t *testing.T) {
	r := New()
	r.Register("main", &DrawObject{})
	r.Register("main", &DrawObject{})
	assert.Equal(t, 2, r.Len())
}
