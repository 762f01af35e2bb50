package link

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnedByEmptyIDIsAnonymous(t *testing.T) {
	assert.Equal(t, Anonymous, OwnedBy(""))
	assert.True(t, OwnedBy("").IsAnonymous())
}

func TestOwnerAccessors(t *testing.T) {
	owner := OwnedBy("user-1")
	userID, ok := owner.UserID()
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)
	assert.False(t, owner.IsAnonymous())

	_, ok = Anonymous.UserID()
	assert.False(t, ok)
}

func TestOwnerJSONRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		owner    Owner
		expected string
	}{
		{name: "anonymous", owner: Anonymous, expected: `null`},
		{name: "owned", owner: OwnedBy("user-1"), expected: `"user-1"`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			data, err := json.Marshal(testCase.owner)
			require.NoError(t, err)
			assert.JSONEq(t, testCase.expected, string(data))

			var decoded Owner
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, testCase.owner, decoded)
		})
	}
}
