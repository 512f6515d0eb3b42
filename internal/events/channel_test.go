package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Cheer_anonymous(t *testing.T) {
	e, err := NewCheer(nil, []byte(`{"is_anonymous":true,"user_id":null,"broadcaster_user_id":"1337","message":"pogchamp","bits":1000}`))
	require.NoError(t, err)
	assert.True(t, e.IsAnonymous())
	assert.Equal(t, 1000, e.Bits())

	u, err := e.User(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func Test_NewRaid(t *testing.T) {
	e, err := NewRaid(nil, []byte(`{"from_broadcaster_user_id":"1234","from_broadcaster_user_login":"cool_user","from_broadcaster_user_name":"Cool_User","to_broadcaster_user_id":"1337","to_broadcaster_user_login":"cooler_user","to_broadcaster_user_name":"Cooler_User","viewers":9001}`))
	require.NoError(t, err)
	assert.Equal(t, "1234", e.RaidingBroadcasterID())
	assert.Equal(t, "cooler_user", e.RaidedBroadcasterName())
	assert.Equal(t, 9001, e.Viewers())
}

func Test_NewFollow(t *testing.T) {
	e, err := NewFollow(nil, []byte(`{"user_id":"1234","user_login":"cool_user","user_name":"Cool_User","broadcaster_user_id":"1337","broadcaster_user_login":"cooler_user","broadcaster_user_name":"Cooler_User","followed_at":"2020-07-15T18:16:11.17106713Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "1234", e.UserID())
	assert.Equal(t, "cool_user", e.UserName())
	assert.Equal(t, "1337", e.BroadcasterID())
	assert.Equal(t, 2020, e.FollowDate().Year())
}

func Test_decode_error(t *testing.T) {
	_, err := NewStreamOnline(nil, []byte(`{"started_at": 42}`))
	assert.Error(t, err)
}
