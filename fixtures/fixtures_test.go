package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestUserDeterminism(t *testing.T) {
	a := User(42)
	b := User(42)

	// Everything except the wall-clock created_at stamp is index-derived.
	assert.Equal(t, a["user_id"], b["user_id"])
	assert.Equal(t, a["name"], b["name"])
	assert.Equal(t, a["email"], b["email"])
	assert.Equal(t, a["phone"], b["phone"])
	assert.Equal(t, a["address"], b["address"])
	assert.Equal(t, a["profile"], b["profile"])
	assert.Equal(t, a["preferences"], b["preferences"])

	metaA := a["metadata"].(bson.M)
	metaB := b["metadata"].(bson.M)
	assert.Equal(t, metaA["session_id"], metaB["session_id"])
	assert.Equal(t, metaA["checksum"], metaB["checksum"])

	c := User(43)
	assert.NotEqual(t, a["email"], c["email"])
	assert.NotEqual(t, a["user_id"], c["user_id"])
}

func TestUsersUniqueEmails(t *testing.T) {
	users := Users(500)
	require.Len(t, users, 500)

	seen := make(map[string]bool, len(users))
	for _, u := range users {
		doc, ok := u.(bson.M)
		require.True(t, ok, "fixture is not a bson.M")
		email, ok := doc["email"].(string)
		require.True(t, ok, "email missing or not a string")
		assert.False(t, seen[email], "duplicate email %s", email)
		seen[email] = true
	}
}

func TestUserRequiredFields(t *testing.T) {
	u := User(0)
	for _, field := range []string{"user_id", "name", "email", "phone", "address", "registration_date", "profile", "preferences", "metadata"} {
		assert.Contains(t, u, field)
	}

	meta := u["metadata"].(bson.M)
	checksum, ok := meta["checksum"].(string)
	require.True(t, ok)
	assert.Len(t, checksum, 64)
	assert.NotEmpty(t, meta["session_id"])
}
