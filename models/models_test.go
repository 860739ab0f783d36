package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullName(t *testing.T) {
	u := User{FirstName: "Juan", LastName: "Dela Cruz"}
	assert.Equal(t, "Juan Dela Cruz", u.FullName())

	middle := "Santos"
	u.MiddleName = &middle
	assert.Equal(t, "Juan Santos Dela Cruz", u.FullName())

	empty := ""
	u.MiddleName = &empty
	assert.Equal(t, "Juan Dela Cruz", u.FullName())
}
