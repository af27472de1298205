package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/drguard/pkg/errors"
	"github.com/voidshard/drguard/pkg/structs"
)

func TestBadgerPath(t *testing.T) {
	cases := []struct {
		Name   string
		Given  string
		Expect string
	}{
		{"Memory", "badger://memory", ""},
		{"Bare", "badger://", ""},
		{"Absolute", "badger:///var/lib/drguard", "/var/lib/drguard"},
		{"Relative", "badger://data/db", "data/db"},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			u, err := url.Parse(c.Given)
			assert.Nil(t, err)

			assert.Equal(t, c.Expect, badgerPath(u))
		})
	}
}

func TestNewDatabaseBadgerMemory(t *testing.T) {
	db, err := NewDatabase(&Options{URL: "badger://memory"})

	assert.Nil(t, err)
	assert.IsType(t, &Badger{}, db)
	assert.Nil(t, db.Close())
}

func TestNewDatabaseBadScheme(t *testing.T) {
	_, err := NewDatabase(&Options{URL: "mysql://localhost"})

	assert.ErrorIs(t, err, errors.ErrInvalidArg)
}

func TestNewDatabaseNoURL(t *testing.T) {
	_, err := NewDatabase(&Options{})

	assert.ErrorIs(t, err, errors.ErrInvalidArg)
}

func TestValidTransitions(t *testing.T) {
	cases := []struct {
		Name string
		To   structs.Status
		From []structs.Status
		Ok   bool
	}{
		{"Claim", structs.RUNNING, []structs.Status{structs.PENDING, structs.FAILED}, true},
		{"Fail", structs.FAILED, []structs.Status{structs.PENDING, structs.FAILED}, true},
		{"Finish", structs.SUCCESS, []structs.Status{structs.RUNNING}, true},
		{"FromSuccess", structs.RUNNING, []structs.Status{structs.SUCCESS}, false},
		{"PendingToSuccess", structs.SUCCESS, []structs.Status{structs.PENDING}, false},
		{"OneBadEdge", structs.FAILED, []structs.Status{structs.RUNNING, structs.SUCCESS}, false},
		{"NoFrom", structs.FAILED, nil, false},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			err := validTransitions(c.To, c.From)
			if c.Ok {
				assert.Nil(t, err)
			} else {
				assert.ErrorIs(t, err, errors.ErrInvalidArg)
			}
		})
	}
}
