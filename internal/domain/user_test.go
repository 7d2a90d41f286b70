package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserJSONNeverCarriesPasswordHash(t *testing.T) {
	user := User{
		ID:       1,
		Username: "admin",
		Password: "$2a$08$secrethash",
		RoleID:   1,
		Balance:  10000,
	}

	b, err := json.Marshal(user)
	require.NoError(t, err)
	require.NotContains(t, string(b), "secrethash")
	require.NotContains(t, string(b), "Password")
}
