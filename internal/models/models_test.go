package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstName(t *testing.T) {
	tests := []struct {
		guest string
		want  string
	}{
		{"Ana López", "Ana"},
		{"Beto", "Beto"},
		{"María del Carmen Ruiz", "María"},
		{"", ""},
	}

	for _, tt := range tests {
		b := Booking{GuestName: tt.guest}
		assert.Equal(t, tt.want, b.FirstName())
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Pagado", StatusLabel(StatusPaid))
	assert.Equal(t, "Señado", StatusLabel(StatusDeposit))
	assert.Equal(t, "Pendiente", StatusLabel(StatusPending))
	// Anything unknown renders as pending.
	assert.Equal(t, "Pendiente", StatusLabel("whatever"))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusDeposit))
	assert.True(t, ValidStatus(StatusPaid))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("cancelled"))
}
