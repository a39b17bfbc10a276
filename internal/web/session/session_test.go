package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/session"
)

func TestWriteReadDestroy(t *testing.T) {
	session.Init(nil)

	id, err := session.GenerateSessionID()
	require.NoError(t, err)
	assert.Len(t, id, 64)

	in := session.Data{UserID: 3, Username: "alice", RoleID: 2}
	require.NoError(t, in.Write(id, time.Minute))

	var out session.Data
	require.NoError(t, out.Read(id))
	assert.Equal(t, in, out)

	require.NoError(t, session.Destroy(id))
	require.ErrorIs(t, out.Read(id), session.ErrNotFound)
	require.ErrorIs(t, out.Read(""), session.ErrNotFound)
}
