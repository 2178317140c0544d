package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestGenerateSlug(t *testing.T) {
	tests := map[string]string{
		"Go Meetup 2026":          "go-meetup-2026",
		"  Café Crème -- Night! ": "cafe-creme-night",
		"Ünïcödé":                 "unicode",
		"***":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, GenerateSlug(in), in)
	}
}

func TestIsDuplicateKey(t *testing.T) {
	we := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "dup"}}}
	assert.True(t, IsDuplicateKey(we))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", we)))
	assert.True(t, IsDuplicateKey(errors.New("E11000 duplicate key error collection: users")))
	assert.False(t, IsDuplicateKey(errors.New("timeout")))
	assert.False(t, IsDuplicateKey(nil))
}

func TestDuplicateKeyField(t *testing.T) {
	err := errors.New(`E11000 duplicate key error collection: db.users index: email_1 dup key: { email: "a@x.com" }`)
	assert.Equal(t, "email", DuplicateKeyField(err, "username", "email"))
	assert.Equal(t, "", DuplicateKeyField(errors.New("other"), "email"))
}

func TestPage(t *testing.T) {
	page, limit, skip := Page("", "", 20, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
	assert.EqualValues(t, 0, skip)

	page, limit, skip = Page("3", "500", 20, 100)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, limit)
	assert.EqualValues(t, 200, skip)

	page, limit, _ = Page("-2", "abc", 20, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
}
