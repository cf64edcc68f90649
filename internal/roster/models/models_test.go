package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalNotice(t *testing.T) {
	tests := []struct {
		name   string
		person Person
		want   NoticeState
	}{
		{"alive", Person{OriginalName: "Mina", StableID: "Q2"}, NoticeNotApplicable},
		{"dead and waiting", Person{OriginalName: "Pippo Baudo", DeathDate: "2025-08-16"}, NoticePending},
		{"dead and announced", Person{OriginalName: "Pippo Baudo", DeathDate: "2025-08-16", GlobalNotified: true}, NoticeSent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.person.GlobalNotice())
		})
	}
}

func TestFound(t *testing.T) {
	assert.True(t, Person{StableID: "Q1"}.Found())
	assert.False(t, NotFoundPerson("Nessuno").Found())
	assert.Equal(t, "Nessuno", NotFoundPerson("Nessuno").DisplayName())
}
